// Package server provides HTTP routing, middleware, play-request intake and the OAuth2 login callback.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Play-Request Intake
//
// [IntakeHandler] lets other processes drive the headless player. POST /api/play decodes a
// play request and publishes it on the bridge bus, where the single bridge subscriber applies the
// login gate before anything reaches the engine. GET /api/now-playing returns the engine snapshot.
//
// # Login Callback
//
// [LoginHandler] implements the OAuth2 authorization code callback. It validates the state
// parameter, exchanges the code, looks up the account with the access token and stores a signed
// session marker. It processes one callback only.
//
// [BrowserLogin] runs the whole flow: it starts a temporary server on the redirect address, opens
// the consent page in the browser and waits for the callback.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
