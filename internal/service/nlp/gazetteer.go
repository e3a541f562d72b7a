package nlp

const (
	LabelOrg     = "ORG"
	LabelGPE     = "GPE"
	LabelPerson  = "PERSON"
	LabelProduct = "PRODUCT"
	LabelMoney   = "MONEY"
	LabelPercent = "PERCENT"
	LabelDate    = "DATE"
)

var gazetteer = map[string]string{
	"apple": LabelOrg, "microsoft": LabelOrg, "google": LabelOrg, "alphabet": LabelOrg,
	"amazon": LabelOrg, "tesla": LabelOrg, "openai": LabelOrg, "meta": LabelOrg, "nvidia": LabelOrg,
	"netflix": LabelOrg, "intel": LabelOrg, "amd": LabelOrg, "ibm": LabelOrg, "oracle": LabelOrg,
	"samsung": LabelOrg, "sec": LabelOrg, "fed": LabelOrg, "federal reserve": LabelOrg,
	"nasdaq": LabelOrg, "nyse": LabelOrg, "reuters": LabelOrg, "cnbc": LabelOrg, "github": LabelOrg,
	"reddit": LabelOrg, "stocktwits": LabelOrg, "anthropic": LabelOrg,

	"cupertino": LabelGPE, "california": LabelGPE, "new york": LabelGPE, "washington": LabelGPE,
	"china": LabelGPE, "india": LabelGPE, "japan": LabelGPE, "europe": LabelGPE, "london": LabelGPE,
	"san francisco": LabelGPE, "seattle": LabelGPE, "texas": LabelGPE, "germany": LabelGPE,
	"taiwan": LabelGPE, "us": LabelGPE, "u.s.": LabelGPE, "usa": LabelGPE, "united states": LabelGPE,
	"uk": LabelGPE, "eu": LabelGPE,

	"iphone": LabelProduct, "ipad": LabelProduct, "mac": LabelProduct, "macbook": LabelProduct,
	"vision pro": LabelProduct, "apple watch": LabelProduct, "windows": LabelProduct,
	"azure": LabelProduct, "chatgpt": LabelProduct, "gpt-4": LabelProduct, "android": LabelProduct,
	"model 3": LabelProduct, "model y": LabelProduct, "xbox": LabelProduct,
}

// orgSuffixes mark the last word of an organisation name.
var orgSuffixes = map[string]struct{}{
	"inc": {}, "inc.": {}, "corp": {}, "corp.": {}, "corporation": {}, "ltd": {}, "ltd.": {},
	"llc": {}, "plc": {}, "group": {}, "holdings": {}, "bank": {}, "technologies": {},
	"systems": {}, "labs": {}, "capital": {}, "partners": {}, "reserve": {}, "commission": {},
	"exchange": {}, "agency": {}, "department": {}, "university": {}, "fund": {}, "motors": {},
}

var months = map[string]struct{}{
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {}, "june": {}, "july": {},
	"august": {}, "september": {}, "october": {}, "november": {}, "december": {},
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "jun": {}, "jul": {}, "aug": {}, "sep": {},
	"sept": {}, "oct": {}, "nov": {}, "dec": {}, "q1": {}, "q2": {}, "q3": {}, "q4": {},
}

// stopwords end noun phrases and never start an entity.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"in": {}, "on": {}, "at": {}, "of": {}, "for": {}, "to": {}, "from": {}, "by": {}, "with": {},
	"about": {}, "after": {}, "before": {}, "over": {}, "under": {}, "into": {}, "amid": {},
	"and": {}, "or": {}, "but": {}, "as": {}, "than": {}, "while": {}, "because": {}, "if": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "has": {},
	"have": {}, "had": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"can": {}, "do": {}, "does": {}, "did": {}, "it": {}, "its": {}, "they": {}, "their": {},
	"we": {}, "our": {}, "he": {}, "she": {}, "his": {}, "her": {}, "which": {}, "who": {},
	"said": {}, "says": {}, "announced": {}, "announces": {}, "reported": {}, "reports": {},
	"plans": {}, "launched": {}, "launches": {}, "unveiled": {}, "unveils": {}, "expects": {},
	"not": {}, "also": {}, "very": {}, "more": {}, "most": {}, "today": {}, "yesterday": {},
}

// determiners open a noun phrase.
var determiners = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"its": {}, "their": {}, "our": {},
}
