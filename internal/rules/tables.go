package rules

// categoryRule maps narration keywords to a spending category. Rules are
// tested in order; first match wins.
type categoryRule struct {
	keywords   []string
	category   string
	confidence float64
}

var categoryRules = []categoryRule{
	{[]string{"zomato", "swiggy", "dominos", "mcdonald", "kfc", "eatclub"}, "Food", 0.9},
	{[]string{"blinkit", "zepto", "bigbasket", "instamart", "dmart", "grofers"}, "Groceries", 0.9},
	{[]string{"netflix", "hotstar", "spotify", "prime video", "bookmyshow", "sonyliv"}, "Entertainment", 0.9},
	{[]string{"uber", "ola", "rapido", "irctc", "redbus", "makemytrip", "indigo"}, "Transport", 0.88},
	{[]string{"amazon", "flipkart", "myntra", "ajio", "nykaa", "meesho"}, "Shopping", 0.88},
	{[]string{"jio", "airtel", "vodafone", "bsnl", "electricity", "bescom", "broadband", "tata power"}, "Utilities", 0.88},
	{[]string{"pharmeasy", "1mg", "apollo", "practo", "medplus"}, "Health", 0.88},
	{[]string{"rent", "nobroker", "nestaway"}, "Housing", 0.85},
	{[]string{"zerodha", "groww", "mutual fund", "sip ", "upstox"}, "Investments", 0.88},
	{[]string{"salary", "payroll"}, "Salary", 0.9},
	{[]string{"lic ", "policybazaar", "insurance"}, "Insurance", 0.85},
}

// platformRule maps narration keywords to a display platform name. Kept
// separate from categories so a merchant can resolve to both.
type platformRule struct {
	keywords   []string
	platform   string
	confidence float64
}

var platformRules = []platformRule{
	{[]string{"zomato"}, "Zomato", 0.95},
	{[]string{"swiggy", "instamart"}, "Swiggy", 0.95},
	{[]string{"netflix"}, "Netflix", 0.95},
	{[]string{"hotstar"}, "Hotstar", 0.95},
	{[]string{"spotify"}, "Spotify", 0.95},
	{[]string{"uber"}, "Uber", 0.95},
	{[]string{"ola"}, "Ola", 0.95},
	{[]string{"rapido"}, "Rapido", 0.95},
	{[]string{"amazon"}, "Amazon", 0.9},
	{[]string{"flipkart"}, "Flipkart", 0.9},
	{[]string{"myntra"}, "Myntra", 0.9},
	{[]string{"bigbasket"}, "BigBasket", 0.9},
	{[]string{"blinkit"}, "Blinkit", 0.9},
	{[]string{"zepto"}, "Zepto", 0.9},
	{[]string{"irctc"}, "IRCTC", 0.9},
	{[]string{"zerodha"}, "Zerodha", 0.9},
	{[]string{"groww"}, "Groww", 0.9},
	{[]string{"jio"}, "Jio", 0.9},
	{[]string{"airtel"}, "Airtel", 0.9},
}

// paymentRule maps deterministic narration markers to a payment method.
// Marker-based extraction always carries full confidence.
type paymentRule struct {
	markers []string
	method  string
}

var paymentRules = []paymentRule{
	{[]string{"UPI"}, "UPI"},
	{[]string{"NEFT", "IMPS", "RTGS", "FT-", "TRANSFER"}, "Bank Transfer"},
	{[]string{"ATM", "CASH WDL", "CSH WDL"}, "Cash"},
	{[]string{"POS ", "CARD", "ECOM"}, "Card"},
}
