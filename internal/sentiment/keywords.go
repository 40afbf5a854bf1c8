package sentiment

// Keyword tables for multi-dimensional report analysis. Lists cover English
// plus romanized Hindi and Gujarati, since citizen reports arrive in all
// three. Slice order is significant wherever ties are broken by position.

// urgencyTier groups keyword lists by language for one urgency level.
type urgencyTier struct {
	en []string
	hi []string
	gu []string
}

var criticalTier = urgencyTier{
	en: []string{"emergency", "urgent", "immediately", "danger", "life-threatening", "critical", "fatal",
		"collapse", "drowning", "fire", "explosion", "accident", "bleeding", "dying"},
	hi: []string{"emergency", "turant", "jaldi", "khatarnak", "jaan", "aag", "hadsa", "madat"},
	gu: []string{"tatkalik", "jaldi", "jokhami", "aag", "akasmat", "madad"},
}

var highTier = urgencyTier{
	en: []string{"flooding", "blocked", "stuck", "stranded", "overflow", "sewage", "hazard",
		"unsafe", "broken", "fallen", "collapsed", "power cut", "blackout", "major"},
	hi: []string{"baarish", "paani", "band", "tuta", "kharab", "bijli", "bada", "bahut"},
	gu: []string{"varsad", "paani", "band", "tutelu", "kharab", "vij", "motu"},
}

var moderateTier = urgencyTier{
	en: []string{"pothole", "garbage", "smell", "dirty", "noisy", "crack", "leak", "slow",
		"damaged", "poor", "bad", "complaint", "issue", "problem", "concern"},
	hi: []string{"gaddha", "kachra", "ganda", "shor", "tuta", "samasya", "shikayat"},
	gu: []string{"khado", "kachro", "gandu", "awaaj", "tutelu", "samasya", "farid"},
}

// emotionSet pairs an emotion label with its indicator keywords. The slice
// order is the tie-break order for dominant-emotion selection.
type emotionSet struct {
	emotion  string
	keywords []string
}

var emotionSets = []emotionSet{
	{"frustration", []string{"again", "still", "always", "never", "fed up", "tired", "nothing done",
		"no action", "ignored", "useless", "waste", "why", "how long", "phir se",
		"kab tak", "koi nahi sunta", "faaltu"}},
	{"fear", []string{"scared", "afraid", "dangerous", "risky", "unsafe", "children", "dark",
		"accident", "injury", "darr", "khatarnak", "bacche", "andhera"}},
	{"anger", []string{"terrible", "worst", "pathetic", "disgusting", "shame", "corruption",
		"incompetent", "bakwas", "bekar", "sharam", "ghatiya"}},
	{"concern", []string{"worried", "please", "help", "request", "hope", "need", "want",
		"chinta", "madad", "umeed", "zarurat"}},
	{"positive", []string{"thank", "good", "great", "fixed", "resolved", "better", "improved",
		"shukriya", "accha", "sahi", "theek"}},
}

// severityAmplifiers are intensity adverbs (plus repeated exclamation) that
// amplify both severity and urgency when present.
var severityAmplifiers = []string{
	"very", "extremely", "highly", "massive", "huge", "terrible", "worst",
	"bahut", "bohot", "ekdum", "bilkul", "poora", "!!",
}

// hindiMarkers are romanized Hindi function words used for transliteration
// detection; at least two whole-word matches flag the text as hi_transliterated.
var hindiMarkers = []string{
	"hai", "ho", "ka", "ki", "ke", "mein", "ko", "se", "par", "nahi", "kya", "yeh", "woh",
}
