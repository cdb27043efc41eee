package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Check passed
	SymbolFail     = "✗" // Check failed
	SymbolComplete = "●" // Check done, possibly with a warning
	SymbolDivider  = "━" // Report section divider
)
