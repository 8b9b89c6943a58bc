package ledger

import "strings"

// symbolClasses maps normalized symbols whose class is known regardless of
// the declared type providers attach to them. Fiat codes and stablecoins
// count as cash; they settle at par and carry no market exposure.
var symbolClasses = map[string]AssetClass{
	"btc":   AssetClassCrypto,
	"eth":   AssetClassCrypto,
	"sol":   AssetClassCrypto,
	"bnb":   AssetClassCrypto,
	"xrp":   AssetClassCrypto,
	"ada":   AssetClassCrypto,
	"doge":  AssetClassCrypto,
	"avax":  AssetClassCrypto,
	"dot":   AssetClassCrypto,
	"pol":   AssetClassCrypto,
	"matic": AssetClassCrypto,
	"link":  AssetClassCrypto,
	"ltc":   AssetClassCrypto,
	"atom":  AssetClassCrypto,
	"arb":   AssetClassCrypto,
	"op":    AssetClassCrypto,
	"sui":   AssetClassCrypto,
	"apt":   AssetClassCrypto,
	"ton":   AssetClassCrypto,
	"near":  AssetClassCrypto,
	"hype":  AssetClassCrypto,

	"usdt": AssetClassCash,
	"usdc": AssetClassCash,
	"dai":  AssetClassCash,
	"usd":  AssetClassCash,
	"eur":  AssetClassCash,
	"gbp":  AssetClassCash,
	"jpy":  AssetClassCash,
	"chf":  AssetClassCash,
	"cny":  AssetClassCash,
	"hkd":  AssetClassCash,
	"cad":  AssetClassCash,
	"aud":  AssetClassCash,
	"cash": AssetClassCash,
}

// declaredClasses maps provider/user declared types to classes.
var declaredClasses = map[string]AssetClass{
	"crypto":     AssetClassCrypto,
	"token":      AssetClassCrypto,
	"coin":       AssetClassCrypto,
	"defi":       AssetClassCrypto,
	"perp":       AssetClassCrypto,
	"stock":      AssetClassEquity,
	"equity":     AssetClassEquity,
	"etf":        AssetClassEquity,
	"fund":       AssetClassEquity,
	"bond":       AssetClassEquity,
	"cash":       AssetClassCash,
	"fiat":       AssetClassCash,
	"stablecoin": AssetClassCash,
}

// Classify resolves the asset class for a symbol. The manual override, when
// present, wins unconditionally; otherwise the symbol lookup table applies,
// then the declared type. Deterministic, pure, no I/O. This is the single
// source of truth: valuation, grouping, and exposure all route through it.
func Classify(symbol, declaredType string, override *AssetClass) AssetClass {
	if override != nil && isValidAssetClass(*override) {
		return *override
	}
	if class, ok := symbolClasses[normalizeSymbolKey(symbol)]; ok {
		return class
	}
	if class, ok := declaredClasses[normalizeDeclaredType(declaredType)]; ok {
		return class
	}
	return AssetClassOther
}

func isValidAssetClass(class AssetClass) bool {
	for _, c := range AssetClasses {
		if c == class {
			return true
		}
	}
	return false
}

func normalizeSymbolKey(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}

func normalizeDeclaredType(declaredType string) string {
	return strings.ToLower(strings.TrimSpace(declaredType))
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func normalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
