package language

// keywordTable lists distinctive words per language, including romanized and
// diacritic-free spellings people type on a phone. Words that also show up in
// English or tech writing (no, man, comment, non, sim, io, eu) are left out to keep
// false positives down.
// Order matters: earlier languages win ties.
var keywordTable = []struct {
	tag   string
	words []string
}{
	{"hi", []string{
		"kya", "kaam", "karte", "aap", "tum", "hai", "kaise", "kahan", "kaun", "batao",
		"mujhe", "mera", "tumhara", "kab", "kyun", "kyu", "nahi", "accha", "acha", "bhai",
		"क्या", "काम", "करते", "आप", "तुम", "है", "कैसे", "कहां", "कौन", "बताओ",
		"मुझे", "मेरा", "तुम्हारा", "कब", "क्यों", "रहे", "अच्छा", "तुमने",
	}},
	{"ne", []string{
		"namaste", "namaskar", "dhanyabad", "kasto", "kahile", "kati", "kina", "kasari",
		"kasle", "kasko", "malai", "mero", "timro", "tapai", "timi", "usko", "hamilai", "hami",
		"cha", "chha", "huncha", "thiyo", "garnu", "garne", "gareko", "garchan", "garchha",
		"bhayo", "bhanne", "ramro", "sanchai", "thik", "hajur", "hoina", "haina", "chaina",
		"pardaina", "pani", "matra", "ekdam", "bujhe", "garna",
		"छ", "हुन्छ", "थियो", "गर्छ", "भयो", "भन्ने", "राम्रो", "सञ्चै", "ठिक", "होइन",
		"छैन", "पर्दैन", "पनि", "मात्र", "एकदम", "लाई", "बाट",
		"kasto chha", "kasto cha", "k cha", "k chha", "ramro chha", "thik chha", "tapai lai",
	}},
	{"zh", []string{
		"你好", "你", "我", "是", "的", "什么", "怎么", "哪里", "谁", "为什么", "做", "工作",
		"吗", "呢", "在", "有", "没有", "可以", "谢谢",
		"ni hao", "shenme", "zenme", "gongzuo",
	}},
	{"es", []string{
		"hola", "qué", "cómo", "estas", "estás", "donde", "dónde", "cuando", "cuándo",
		"usted", "gracias", "por favor", "habla", "hablas", "eres", "soy", "trabajo",
		"hacer", "haces", "bueno", "malo", "puedo", "puede", "quiero", "tienes", "experiencia",
		"cuál", "cual", "los", "las", "el", "tu",
	}},
	{"fr", []string{
		"bonjour", "salut", "quoi", "où", "pourquoi", "quand", "vous", "je",
		"moi", "merci", "parle", "parlez", "travail", "travailler", "faire", "fais", "faites",
		"oui", "s'il vous plaît", "sil vous plait", "peux", "veux", "être", "suis",
		"est", "les", "quelle", "quel", "avez",
	}},
	{"tl", []string{
		"kumusta", "ano", "paano", "saan", "sino", "bakit", "ikaw", "ako", "salamat",
		"trabaho", "gawa", "mo", "ba",
	}},
	{"id", []string{
		"apa", "bagaimana", "dimana", "siapa", "mengapa", "kamu", "saya",
		"terima kasih", "kerja", "bekerja", "pengalaman", "anda",
	}},
	{"th", []string{
		"สวัสดี", "คุณ", "ฉัน", "อะไร", "ที่ไหน", "ทำไม", "ทำงาน", "อย่างไร", "เมื่อไหร่",
		"ใคร", "ขอบคุณ", "ครับ", "ค่ะ", "sawasdee", "khun", "arai", "tamngan",
	}},
	{"vi", []string{
		"xin chào", "chào", "bạn", "tôi", "gì", "ở đâu", "tại sao", "làm", "việc",
		"làm việc", "cảm ơn", "thế nào", "như thế nào", "khi nào", "không", "được",
		"chao", "toi", "cam on", "lam viec",
	}},
	{"ar", []string{
		"مرحبا", "السلام", "أنت", "أنا", "ماذا", "أين", "لماذا", "كيف", "متى", "من",
		"عمل", "العمل", "هل", "نعم", "شكرا", "marhaba", "salam", "limadha", "kayf",
	}},
	{"ja", []string{
		"こんにちは", "おはよう", "あなた", "私", "何", "どこ", "なぜ", "どう", "いつ", "誰",
		"仕事", "です", "ます", "ありがとう", "konnichiwa", "ohayo", "anata", "watashi",
		"nani", "doko", "naze",
	}},
	{"ko", []string{
		"안녕하세요", "안녕", "당신", "무엇", "뭐", "어디", "왜", "어떻게", "언제", "누구",
		"일", "감사합니다", "고맙습니다", "annyeong", "annyeonghaseyo", "mwo", "eodi",
		"eotteoke", "nugu",
	}},
	{"pt", []string{
		"olá", "ola", "oi", "onde", "quando", "porquê", "porque", "voce", "você",
		"obrigado", "obrigada", "fala", "falar", "trabalho", "trabalhar", "fazer",
		"não", "nao", "bom", "ruim", "posso", "quero", "está", "experiência",
	}},
	{"ru", []string{
		"привет", "здравствуйте", "ты", "вы", "я", "что", "где", "почему", "как", "когда",
		"кто", "работа", "работать", "да", "нет", "спасибо", "хорошо",
		"privet", "zdravstvuyte", "chto", "gde", "pochemu", "kak", "kogda", "kto",
	}},
	{"de", []string{
		"hallo", "guten tag", "wie", "wo", "wer", "warum", "wann", "du", "sie",
		"ich", "danke", "bitte", "arbeit", "arbeiten", "machen", "machst", "ja", "nein",
		"kann", "möchte", "bist", "ist", "sprechen", "erfahrung", "hast",
	}},
	{"it", []string{
		"ciao", "cosa", "dove", "perche", "perché", "grazie", "parla", "parli",
		"lavoro", "esperienza", "sei", "hai",
	}},
}
