package language

// stopwordTable holds a small set of high-frequency function words per
// Latin-script language, used as a last-resort signal when markup and
// URL give no language hint. It is deliberately short per language —
// enough to separate common European/Southeast-Asian Latin-script
// languages from one another, not a full stop-word corpus.
var stopwordTable = map[string][]string{
	"es": {"el", "la", "de", "que", "y", "en", "los", "las", "para", "con", "por"},
	"fr": {"le", "la", "de", "et", "les", "des", "pour", "dans", "avec", "que"},
	"de": {"der", "die", "das", "und", "ist", "nicht", "mit", "für", "von", "den"},
	"it": {"il", "la", "di", "che", "per", "con", "non", "gli", "delle", "del"},
	"pt": {"o", "a", "de", "que", "para", "com", "os", "as", "uma", "do"},
	"nl": {"de", "het", "een", "van", "voor", "met", "niet", "zijn", "dat"},
	"sv": {"och", "att", "det", "som", "för", "med", "den", "är", "inte"},
	"no": {"og", "det", "som", "for", "med", "den", "er", "ikke"},
	"da": {"og", "det", "som", "for", "med", "den", "er", "ikke"},
	"fi": {"ja", "on", "ei", "että", "joka", "tämä", "olla"},
	"pl": {"i", "w", "nie", "na", "się", "z", "do", "jest"},
	"cs": {"a", "v", "na", "se", "je", "do", "že"},
	"sk": {"a", "v", "na", "sa", "je", "do", "že"},
	"hu": {"és", "a", "az", "hogy", "nem", "egy", "is"},
	"ro": {"și", "de", "la", "nu", "cu", "pentru", "este"},
	"hr": {"i", "u", "na", "se", "je", "da", "što"},
	"sl": {"in", "v", "na", "se", "je", "da"},
	"et": {"ja", "on", "ei", "et", "see", "ning"},
	"lv": {"un", "ir", "ar", "no", "uz", "kas"},
	"lt": {"ir", "yra", "su", "iš", "kas", "kad"},
	"tr": {"ve", "bir", "bu", "ile", "için", "da"},
	"id": {"dan", "yang", "untuk", "dengan", "dari", "pada"},
	"ms": {"dan", "yang", "untuk", "dengan", "dari", "pada"},
	"vi": {"và", "của", "cho", "với", "là", "không"},
	"tl": {"at", "ang", "ng", "sa", "para", "na"},
	"sw": {"na", "ya", "wa", "kwa", "ni", "hii"},
	"af": {"en", "die", "van", "vir", "met", "nie"},
	"ca": {"el", "la", "de", "que", "i", "per", "amb"},
}
