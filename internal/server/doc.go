// Package server provides HTTP routing, middleware, and the recommendation API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Recommendation API
//
// [RecommendationHandler] exposes the pipeline over two POST endpoints:
//
//	POST /api/recommendations        → synchronous aggregate JSON result
//	POST /api/recommendations/stream → Server-Sent Events stream
//
// The streaming endpoint writes one `data: {json}` frame per pipeline event,
// separated by blank lines, flushing after each frame. The stream always ends
// with a single complete or error event unless the client disconnects first,
// which cancels the run through the request context.
package server
