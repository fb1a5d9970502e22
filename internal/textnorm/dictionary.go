package textnorm

var defaultSlang = map[string]string{
	"ga":     "tidak",
	"gak":    "tidak",
	"nggak":  "tidak",
	"ngga":   "tidak",
	"udah":   "sudah",
	"dah":    "sudah",
	"udh":    "sudah",
	"bgt":    "banget",
	"bener":  "benar",
	"yg":     "yang",
	"org":    "orang",
	"krn":    "karena",
	"gue":    "saya",
	"gw":     "saya",
	"aku":    "saya",
	"lo":     "kamu",
	"lu":     "kamu",
	"kalo":   "kalau",
	"gimana": "bagaimana",
	"emang":  "memang",
	"trus":   "terus",
}

// Sastrawi's default stopword list.
var defaultStopwords = []string{
	"yang", "untuk", "pada", "ke", "para", "namun", "menurut", "antara", "dia", "dua",
	"ia", "seperti", "jika", "sehingga", "kembali", "dan", "tidak", "ini", "karena",
	"kepada", "oleh", "saat", "harus", "sementara", "setelah", "belum", "kami", "sekitar",
	"bagi", "serta", "di", "dari", "telah", "sebagai", "masih", "hal", "ketika", "adalah",
	"itu", "dalam", "bisa", "bahwa", "atau", "hanya", "kita", "dengan", "akan", "juga",
	"ada", "mereka", "sudah", "saya", "terhadap", "secara", "agar", "lain", "anda",
	"begitu", "mengapa", "kenapa", "yaitu", "yakni", "daripada", "itulah", "lagi", "maka",
	"tentang", "demi", "dimana", "kemana", "pula", "sambil", "sebelum", "sesudah", "supaya",
	"guna", "kah", "pun", "sampai", "sedangkan", "selagi", "tetapi", "apakah", "kecuali",
	"sebab", "selain", "seolah", "seraya", "seterusnya", "tanpa", "agak", "boleh", "dapat",
	"dsb", "dst", "dll", "dahulu", "dulunya", "anu", "demikian", "tapi", "ingin", "nggak",
	"mari", "nanti", "melainkan", "oh", "ok", "seharusnya", "sebetulnya", "setiap",
	"setidaknya", "sesuatu", "pasti", "saja", "toh", "ya", "walau", "tolong", "tentu",
	"amat", "apalagi", "bagaimanapun",
}

// defaultRoots confirms stems. It favours the vocabulary people use when
// talking about feelings and relationships; words outside it are left as-is.
var defaultRoots = []string{
	// feelings
	"rasa", "sedih", "senang", "marah", "cemas", "takut", "khawatir", "bahagia", "kecewa",
	"galau", "stres", "stress", "depresi", "down", "tenang", "nyaman", "aman", "gelisah",
	"bingung", "kesal", "benci", "cinta", "sayang", "rindu", "kangen", "sepi", "sendiri",
	"malu", "salah", "lega", "puas", "lelah", "capek", "sakit", "hati",
	"sesal", "iri", "cemburu", "curiga", "panik", "ragu", "yakin", "percaya", "harap",
	"putus", "asa", "ingin", "serah", "pasrah", "jadi", "tekan", "beban", "hampa", "kosong", "tangis", "nangis", "luka",
	"trauma", "insecure", "minder", "emosi", "suka", "senyum", "tawa", "gembira", "syukur",
	// relationships and attachment
	"pasang", "pacar", "teman", "kawan", "sahabat", "keluarga", "orang", "tua", "ibu",
	"ayah", "kakak", "adik", "suami", "istri", "hubung", "dekat", "jauh", "jarak",
	"tinggal", "abai", "hirau", "peduli", "perhati", "butuh", "perlu", "minta", "balas",
	"respon", "respons", "chat", "pesan", "telepon", "kabar", "janji", "bohong", "setia",
	"selingkuh", "pisah", "temu", "kenal", "buka", "tutup", "diam", "cerita", "bicara",
	"ngobrol", "dengar", "lihat", "pikir", "ingat", "lupa", "tahu", "mengerti", "paham",
	"terima", "tolak", "kejar", "hindar", "lari", "peluk", "cium", "sentuh",
	"mandiri", "independen", "bebas", "ikat", "lengket", "clingy", "space", "ruang", "waktu",
	"kasih", "sibuk", "kerja", "kuliah", "sekolah", "rumah",
	"tengkar", "ribut", "damai", "maaf", "ampun", "kontrol",
	"atur", "milik", "jaga", "lindung", "dukung", "bantu", "ajak", "tanya", "jawab",
	// behaviour and reflection
	"pola", "pattern", "masalah", "sama", "ulang", "sering", "selalu", "jarang", "lalu",
	"coba", "mulai", "ubah", "sadar", "refleksi", "belajar", "tumbuh", "hadap",
	"sulit", "mudah", "susah", "gampang", "berat", "ringan", "kuat", "lemah",
	"diri", "hidup", "mati", "malam", "pagi", "siang", "sore", "hari", "minggu", "bulan",
	"tahun", "baru", "lama", "dulu", "kini", "sekarang", "besok", "kemarin", "banget",
	"benar", "bagus", "buruk", "baik", "jahat", "tidur", "makan", "main", "pergi", "pulang",
	"datang", "tunggu", "duduk", "jalan", "kirim", "baca", "tulis", "pakai", "beri",
	"kasi", "dapat", "hilang", "cari", "alami", "jalani",
}
