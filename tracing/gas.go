package tracing

import "fmt"

// InkPerGas is the fixed ink price of one unit of gas.
const InkPerGas = 10_000

func InkToGas(ink uint64) float64 {
	return float64(ink) / InkPerGas
}

// FormatGas renders ink as gas with four decimals, e.g. 12345 -> "1.2345 gas".
func FormatGas(ink uint64) string {
	return fmt.Sprintf("%d.%04d gas", ink/InkPerGas, ink%InkPerGas)
}
