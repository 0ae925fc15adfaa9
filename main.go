// =============================================================================
// Receipt Generator - Main Entry Point
// =============================================================================
//
// USAGE:
//   receipt-generator render     - Render every input file as PDF receipts
//   receipt-generator validate   - Check inputs without rendering
//   receipt-generator history    - List previously rendered receipts
//   receipt-generator version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : Layout engine, PDF canvas, renderer, inputs, storage
//   - pkg/        : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/receipt-generator/cmd"
)

func main() {
	cmd.Execute()
}
