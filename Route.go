package mvc

// Route defines the methods that any HTTP route must implement.  A Route is
// the action half of the route table: the Router maps (Method, Path) pairs to
// the Handle method of a concrete Route value built at startup.
type Route interface {
	Method() string
	Path() string
	Middleware() []Middleware
	Handle(ctx *Context)
}
