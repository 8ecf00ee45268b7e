// Package imaging loads chart images and renders the visual QA artifacts
// of the digitization pipeline.
//
// It bridges decoded image.Image values and the intensity grids of the
// chart package: ImageCache decodes PNG, JPEG, GIF, TIFF and BMP files,
// LoadGrid converts them to luminance, and ColorMask turns a colored-bar
// chart into a grid where the chosen bar color is bright.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Regions are given as
// (x1,y1) inclusive and (x2,y2) exclusive.
//
// # Rendered Output
//
// Zoom, BinarizePreview and Overlay return PNG images base64-encoded for
// transport over MCP. DrawOverlay returns the raw image, and SaveOverlay
// writes it to a file in the format named by the extension.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The rendering functions never
// modify their source image.
package imaging
