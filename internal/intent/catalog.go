package intent

import "regexp"

// DefaultPriority is the order in which the classifier tries intents.
// Greeting and closure preempt content intents; the turn-gated attachment
// probes are checked before the broad emotional intents.
var DefaultPriority = []string{
	Greeting,
	Closure,
	AttachmentAnxious,
	AttachmentAvoidant,
	SharingEmotion,
	SelfReflection,
	General,
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// DefaultIntents returns the built-in Indonesian intent table.
func DefaultIntents() []Intent {
	return []Intent{
		{
			Name: Greeting,
			Patterns: patterns(
				`\b(hai|halo|hi|hey|selamat|assalamualaikum)\b`,
				`^(pagi|siang|sore|malam)`,
			),
			Responses: []string{
				"Hai! 👋 Saya ReflectBot, teman refleksi Anda.",
				"Halo! Senang bertemu dengan Anda.",
				"Selamat datang! Saya di sini untuk mendengarkan Anda.",
			},
			FollowUps: []string{
				"Bagaimana perasaan Anda hari ini?",
				"Ada yang ingin Anda ceritakan?",
				"Apa yang sedang ada di pikiran Anda sekarang?",
			},
			RequiredTurns: 0,
		},
		{
			Name: SharingEmotion,
			Patterns: patterns(
				`\b(merasa|rasa|perasaan)\s+\w+`,
				`\b(sedih|senang|marah|cemas|takut|khawatir|bahagia|kecewa)\b`,
				`\b(stress|depresi|down|galau)\b`,
			),
			Responses: []string{
				"Terima kasih sudah terbuka dengan saya. Perasaan Anda valid.",
				"Saya dengar Anda. Tidak apa-apa merasakan ini.",
				"Wajar untuk merasa seperti itu. Anda tidak sendirian.",
			},
			FollowUps: []string{
				"Bisa ceritakan lebih detail apa yang membuat Anda merasa seperti itu?",
				"Kapan pertama kali Anda merasa seperti ini?",
				"Apa yang biasanya membuat perasaan ini muncul?",
			},
			RequiredTurns: 1,
		},
		{
			Name: AttachmentAnxious,
			Patterns: patterns(
				`\b(takut|khawatir)\s+(ditinggal|dihiraukan|diabaikan)`,
				`\b(insecure|tidak percaya diri)\b`,
				`\bkenapa\s+(dia|kamu)\s+(tidak|nggak)\b`,
				`\b(butuh|perlu)\s+perhatian\b`,
			),
			Responses: []string{
				"Kekhawatiran akan ditinggalkan adalah perasaan yang sangat manusiawi.",
				"Saya mendengar kebutuhan Anda untuk merasa aman dalam hubungan.",
			},
			FollowUps: []string{
				"Apakah Anda sering merasa cemas saat pasangan tidak responsif?",
				"Bagaimana Anda biasanya mengekspresikan kebutuhan emosional Anda?",
			},
			RequiredTurns: 3,
		},
		{
			Name: AttachmentAvoidant,
			Patterns: patterns(
				`\b(butuh|perlu)\s+space\b`,
				`\b(terlalu|over)\s+(clingy|lengket)`,
				`\b(mandiri|independen)\b.*\b(tidak butuh|nggak perlu)`,
				`\bsulit\s+terbuka\b`,
			),
			Responses: []string{
				"Kemandirian adalah hal yang baik, tapi koneksi juga penting.",
				"Menjaga jarak emosional kadang terasa lebih aman.",
			},
			FollowUps: []string{
				"Apakah Anda merasa tidak nyaman saat seseorang terlalu dekat secara emosional?",
				"Bagaimana Anda biasanya merespons saat seseorang menunjukkan kebutuhan emosional?",
			},
			RequiredTurns: 3,
		},
		{
			Name: SelfReflection,
			Patterns: patterns(
				`\bkenapa\s+saya\s+(selalu|sering)\b`,
				`\b(pola|pattern)\s+yang sama\b`,
				`\b(salah|masalah)\s+saya\b`,
			),
			Responses: []string{
				"Kesadaran diri adalah langkah pertama menuju perubahan.",
				"Anda mulai melihat pola - itu sangat penting.",
			},
			FollowUps: []string{
				"Apakah Anda melihat pola ini berulang di berbagai hubungan?",
				"Menurut Anda, apa yang membuat pola ini terus terjadi?",
			},
			RequiredTurns: 4,
		},
		{
			Name: Closure,
			Patterns: patterns(
				`\b(terima kasih|thanks|makasih)\b`,
				`\b(cukup|sudah|oke)\b.*\b(bantu|jelas)`,
				`\b(bye|selesai|cukup)\b`,
			),
			Responses: []string{
				"Terima kasih sudah berbagi dengan saya hari ini. 🙏",
				"Saya senang bisa menemani refleksi Anda.",
			},
			FollowUps: []string{
				"Jika Anda ingin menganalisis percakapan kita, tekan tombol 'Analisis Percakapan'.",
				"Sampai jumpa! Saya selalu di sini jika Anda butuh berbicara lagi.",
			},
			RequiredTurns: 6,
		},
		{
			Name: General,
			Responses: []string{
				"Menarik. Bisa ceritakan lebih banyak?",
				"Saya mendengarkan. Silakan lanjutkan.",
				"Apa yang Anda rasakan tentang itu?",
			},
			FollowUps: []string{
				"Bagaimana perasaan Anda saat itu?",
				"Apa yang membuat situasi ini penting bagi Anda?",
			},
			RequiredTurns: 0,
		},
	}
}

// DefaultCatalog returns the built-in catalog. It panics only if the
// built-in table is malformed.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultIntents(), DefaultPriority, General)
	if err != nil {
		panic("intent: invalid default catalog: " + err.Error())
	}
	return c
}
