// Package response provides constructors for handler.Response values: plain
// text, raw bytes, JSON, Server-Sent Events and WebSocket upgrades, plus the
// HTTPError type used across the module to carry a status code with an error.
//
//	func modelsHandler(ctx handler.Context) handler.Response {
//		return response.JSON(list)
//	}
//
//	func unmapped(ctx handler.Context) handler.Response {
//		return response.StringWithStatus("API not implemented", http.StatusNotImplemented)
//	}
//
// Errors are values. Any error exposing StatusCode() int (HTTPError does)
// selects the status of the error response; StatusOf extracts it and falls
// back to 500.
package response
