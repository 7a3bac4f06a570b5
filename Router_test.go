package mvc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ljpx/di"
	"github.com/ljpx/problem"
	"github.com/ljpx/test"
)

type RouterFixture struct {
	x *Router

	home     *spyRoute
	articles *spyRoute
}

func SetupRouterFixture() *RouterFixture {
	fixture := &RouterFixture{}

	fixture.x = NewRouter(di.NewContainer(), &testLogger{}, &Config{
		DebuggingEnabled:         true,
		ProblemDetailsTypePrefix: "https://testi.ng",
		JSONContentLengthLimit:   1 << 20,
	})

	fixture.home = &spyRoute{method: http.MethodGet, path: "/", body: "home"}
	fixture.articles = &spyRoute{method: http.MethodGet, path: "/articles", body: "articles"}

	fixture.x.Register(fixture.home)
	fixture.x.Register(fixture.articles)

	return fixture
}

func TestRouterDispatchesRegisteredRoute(t *testing.T) {
	// Arrange.
	fixture := SetupRouterFixture()
	handler := fixture.x.Build()

	// Act.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/articles", nil)
	handler.ServeHTTP(w, r)

	// Assert.
	res := w.Result()
	test.That(t, res.StatusCode).IsEqualTo(http.StatusOK)
	test.That(t, fixture.articles.invocations).IsEqualTo(1)
	test.That(t, fixture.home.invocations).IsEqualTo(0)

	body, err := ReadBodyString(res)
	test.That(t, err).IsNil()
	test.That(t, body).IsEqualTo("articles")
}

func TestRouterIgnoresQueryStringWhenMatching(t *testing.T) {
	// Arrange.
	fixture := SetupRouterFixture()
	handler := fixture.x.Build()

	// Act.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/articles?page=2&x=1", nil)
	handler.ServeHTTP(w, r)

	// Assert.
	res := w.Result()
	test.That(t, res.StatusCode).IsEqualTo(http.StatusOK)
	test.That(t, fixture.articles.invocations).IsEqualTo(1)
}

func TestRouterNotFoundForUnregisteredPath(t *testing.T) {
	// Arrange.
	fixture := SetupRouterFixture()
	handler := fixture.x.Build()

	// Act.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/missing", nil)
	handler.ServeHTTP(w, r)

	// Assert.
	res := w.Result()
	test.That(t, res.StatusCode).IsEqualTo(http.StatusNotFound)
	test.That(t, fixture.home.invocations).IsEqualTo(0)
	test.That(t, fixture.articles.invocations).IsEqualTo(0)

	body, err := ReadBodyString(res)
	test.That(t, err).IsNil()
	test.That(t, body).IsEqualTo(NotFoundBody)
}

func TestRouterNotFoundForMethodMismatch(t *testing.T) {
	// Arrange.
	fixture := SetupRouterFixture()
	handler := fixture.x.Build()

	// Act.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/articles", nil)
	handler.ServeHTTP(w, r)

	// Assert.
	res := w.Result()
	test.That(t, res.StatusCode).IsEqualTo(http.StatusNotFound)
	test.That(t, fixture.articles.invocations).IsEqualTo(0)

	body, err := ReadBodyString(res)
	test.That(t, err).IsNil()
	test.That(t, body).IsEqualTo(NotFoundBody)
}

func TestRouterDuplicateRegistrationOverwrites(t *testing.T) {
	// Arrange.
	fixture := SetupRouterFixture()
	replacement := &spyRoute{method: http.MethodGet, path: "/articles", body: "replacement"}
	fixture.x.Register(replacement)
	handler := fixture.x.Build()

	// Act.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/articles", nil)
	handler.ServeHTTP(w, r)

	// Assert.
	test.That(t, replacement.invocations).IsEqualTo(1)
	test.That(t, fixture.articles.invocations).IsEqualTo(0)

	body, err := ReadBodyString(w.Result())
	test.That(t, err).IsNil()
	test.That(t, body).IsEqualTo("replacement")
}

func TestRouterMiddlewareCanShortCircuit(t *testing.T) {
	// Arrange.
	fixture := SetupRouterFixture()

	guarded := &spyRoute{
		method:     http.MethodGet,
		path:       "/guarded",
		body:       "guarded",
		middleware: []Middleware{&haltingMiddleware{}},
	}
	fixture.x.Register(guarded)
	handler := fixture.x.Build()

	// Act.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	handler.ServeHTTP(w, r)

	// Assert.
	res := w.Result()
	test.That(t, res.StatusCode).IsEqualTo(http.StatusForbidden)
	test.That(t, guarded.invocations).IsEqualTo(0)
}

func TestRouterRecoversFromPanic(t *testing.T) {
	// Arrange.
	fixture := SetupRouterFixture()

	panicking := &spyRoute{method: http.MethodGet, path: "/panic", shouldPanic: true}
	fixture.x.Register(panicking)
	handler := fixture.x.Build()

	// Act.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/panic", nil)
	handler.ServeHTTP(w, r)

	// Assert.
	res := w.Result()
	test.That(t, res.StatusCode).IsEqualTo(http.StatusInternalServerError)

	problemDetails := &problem.Details{}
	err := UnmarshalFromResponse(res, problemDetails)
	test.That(t, err).IsNil()

	test.That(t, problemDetails.Type).IsEqualTo("https://testi.ng/http/internal-server-error")
	test.That(t, problemDetails.Error).IsEqualTo("something to panic about")
}

func TestRouterCanNotBeUsedAfterBuild(t *testing.T) {
	// Arrange.
	fixture := SetupRouterFixture()
	fixture.x.Build()

	defer func() {
		// Assert.
		p := recover()
		test.That(t, p).IsEqualTo("a Router can not be used after Build has been called")
	}()

	// Act.
	fixture.x.Register(&spyRoute{method: http.MethodGet, path: "/late"})
}

// -----------------------------------------------------------------------------

type spyRoute struct {
	method      string
	path        string
	body        string
	middleware  []Middleware
	shouldPanic bool

	invocations int
}

var _ Route = &spyRoute{}

func (r *spyRoute) Method() string {
	return r.method
}

func (r *spyRoute) Path() string {
	return r.path
}

func (r *spyRoute) Middleware() []Middleware {
	return r.middleware
}

func (r *spyRoute) Handle(ctx *Context) {
	if r.shouldPanic {
		panic("something to panic about")
	}

	r.invocations++
	ctx.RespondWithText(http.StatusOK, r.body)
}

type haltingMiddleware struct{}

var _ Middleware = &haltingMiddleware{}

func (*haltingMiddleware) Handle(ctx *Context) bool {
	ctx.Respond(http.StatusForbidden)
	return false
}

type testLogger struct {
	messages []string
}

func (l *testLogger) Printf(format string, a ...interface{}) {
	l.messages = append(l.messages, format)
}
