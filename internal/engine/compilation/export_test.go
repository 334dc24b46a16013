package compilation

// SplitQualified exposes splitQualified for testing.
var SplitQualified = splitQualified
