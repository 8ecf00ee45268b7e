// Package ocr reads chart axis labels with Tesseract.
//
// Engine wraps gosseract/v2 and implements chart.Recognizer, reporting each
// recognized word with its confidence and bounding box in the coordinates
// of the image it was given. Small tick labels recognize poorly at native
// resolution, so Engine can upscale the image first and map the boxes back.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A non-standard data directory can be supplied with the tessdata prefix
// (CHART_MCP_TESSDATA or ocr.tessdataPrefix in the configuration).
//
// # Cancellation
//
// Tesseract calls cannot be interrupted. The context is checked before and
// after each recognition, so a cancelled request returns as soon as the
// current call finishes.
package ocr
