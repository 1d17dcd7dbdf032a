package importer

// EscapeAssetName makes a Binance asset symbol usable as a Beancount
// commodity. Commodities may not start with a digit, so symbols such as
// 1INCH are prefixed with "XX".
func EscapeAssetName(name string) string {
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		return "XX" + name
	}
	return name
}
