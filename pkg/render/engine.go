package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	gocache "github.com/patrickmn/go-cache"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/errors"
	"github.com/provide-io/plating/pkg/schema"
)

// Engine renders bundle templates. It is safe for concurrent use: the
// compiled-template cache is the only shared mutable state, its keys
// are content hashes, and recomputing an entry is harmless, so no
// locking beyond the cache's own is needed.
//
// Engines are plain values wired in by the caller, never process-wide
// singletons, so tests can instantiate isolated instances.
type Engine struct {
	cache *gocache.Cache
	base  template.FuncMap
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithCache injects a shared compiled-template cache.
func WithCache(c *gocache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// NewEngine creates a render engine. The default cache never expires
// entries; content-hash keys make time-based invalidation unnecessary.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache: gocache.New(gocache.NoExpiration, 0),
		base:  sprig.TxtFuncMap(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// renderState tracks one render invocation: the partials currently
// being resolved (for cycle detection) and the first structured
// failure raised by a bound function. text/template wraps function
// errors on the way out; keeping the original here preserves its kind.
type renderState struct {
	rc         *Context
	engine     *Engine
	ref        bundle.Ref
	inProgress map[string]bool
	chain      []string
	failure    error
}

// fail records the first structured failure and returns it for the
// template function to propagate.
func (s *renderState) fail(err error) error {
	if s.failure == nil {
		s.failure = err
	}
	return err
}

// Render renders the bundle's main template against rc and returns the
// final markdown. Failures are structured: the returned error carries
// the bundle identity and a failure kind, and never affects any other
// bundle.
func (e *Engine) Render(rc *Context, b *bundle.Bundle) (string, error) {
	src, ok, err := b.MainTemplate()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.WrapResource("render", "bundle", b.Name(), errors.ErrUndocumented)
	}

	state := &renderState{
		rc:         rc,
		engine:     e,
		ref:        b.Ref(),
		inProgress: make(map[string]bool),
	}
	return e.execute(state, "main", src)
}

// execute compiles (via cache) and runs one template source with the
// state's bound functions.
func (e *Engine) execute(state *renderState, unit, src string) (string, error) {
	tmpl, err := e.compile(state.ref, unit, src)
	if err != nil {
		return "", state.fail(&errors.RenderError{
			Bundle: state.ref.Name,
			Kind:   errors.KindTemplateInvalid,
			Detail: err.Error(),
			Err:    err,
		})
	}

	// Clone so per-render closures never leak into the cached template.
	bound, err := tmpl.Clone()
	if err != nil {
		return "", state.fail(errors.WrapResource("clone", "template", unit, err))
	}
	bound = bound.Funcs(e.funcs(state))

	var buf strings.Builder
	if err := bound.Execute(&buf, state.rc); err != nil {
		if state.failure != nil {
			return "", state.failure
		}
		return "", state.fail(&errors.RenderError{
			Bundle: state.ref.Name,
			Kind:   errors.KindTemplateInvalid,
			Detail: err.Error(),
			Err:    err,
		})
	}
	return buf.String(), nil
}

// compile returns the parsed template for src, consulting the cache.
// Keys include a content hash, so edits invalidate implicitly and
// stale entries are simply never hit again.
func (e *Engine) compile(ref bundle.Ref, unit, src string) (*template.Template, error) {
	key := cacheKey(ref, unit, src)
	if cached, ok := e.cache.Get(key); ok {
		return cached.(*template.Template), nil
	}

	// Parse against placeholder functions; real closures are bound per
	// render via Clone + Funcs.
	tmpl, err := template.New(unit).Funcs(e.placeholderFuncs()).Parse(src)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, tmpl, gocache.NoExpiration)
	return tmpl, nil
}

// cacheKey derives the process-wide cache key for one template source.
func cacheKey(ref bundle.Ref, unit, src string) string {
	sum := sha256.Sum256([]byte(src))
	return ref.String() + ":" + unit + ":" + hex.EncodeToString(sum[:])
}

// placeholderFuncs satisfies the parser for the four domain functions.
func (e *Engine) placeholderFuncs() template.FuncMap {
	funcs := template.FuncMap{}
	for name, fn := range e.base {
		funcs[name] = fn
	}
	funcs["schema"] = func() (string, error) { return "", nil }
	funcs["example"] = func(string) (string, error) { return "", nil }
	funcs["include"] = func(string) (string, error) { return "", nil }
	funcs["render"] = func(string) (string, error) { return "", nil }
	return funcs
}

// funcs binds the four domain functions as closures over one render.
func (e *Engine) funcs(state *renderState) template.FuncMap {
	funcs := template.FuncMap{}
	for name, fn := range e.base {
		funcs[name] = fn
	}

	funcs["schema"] = func() (string, error) {
		return e.schemaFunc(state)
	}
	funcs["example"] = func(name string) (string, error) {
		return e.exampleFunc(state, name)
	}
	funcs["include"] = func(filename string) (string, error) {
		return e.includeFunc(state, filename)
	}
	funcs["render"] = func(filename string) (string, error) {
		return e.renderFunc(state, filename)
	}
	return funcs
}

// schemaFunc renders the context's schema tree as a markdown table.
func (e *Engine) schemaFunc(state *renderState) (string, error) {
	if state.rc.Schema == nil {
		return "", state.fail(&errors.RenderError{
			Bundle: state.ref.Name,
			Kind:   errors.KindSchemaUnavailable,
			Detail: "schema() called but no schema is available",
		})
	}
	return schema.ToMarkdown(state.rc.Schema), nil
}

// exampleFunc wraps a named example in a fenced code block tagged with
// the bundle's language.
func (e *Engine) exampleFunc(state *renderState, name string) (string, error) {
	content, ok := state.rc.Examples[name]
	if !ok {
		return "", state.fail(&errors.RenderError{
			Bundle: state.ref.Name,
			Kind:   errors.KindMissingExample,
			Detail: fmt.Sprintf("no example named %q (have: %s)", name, knownKeys(state.rc.Examples)),
		})
	}

	lang := state.rc.Language
	if lang == "" {
		lang = bundle.DefaultLanguage
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return "```" + lang + "\n" + content + "```", nil
}

// includeFunc returns a partial's raw content, unprocessed.
func (e *Engine) includeFunc(state *renderState, filename string) (string, error) {
	content, ok := state.rc.Partials[filename]
	if !ok {
		return "", state.fail(&errors.RenderError{
			Bundle: state.ref.Name,
			Kind:   errors.KindMissingPartial,
			Detail: fmt.Sprintf("no partial named %q (have: %s)", filename, knownKeys(state.rc.Partials)),
		})
	}
	return content, nil
}

// renderFunc processes a partial as a template against the same
// context. Membership in the in-progress set, not recursion depth,
// detects cycles before they can recurse unboundedly.
func (e *Engine) renderFunc(state *renderState, filename string) (string, error) {
	if state.inProgress[filename] {
		return "", state.fail(&errors.RenderError{
			Bundle: state.ref.Name,
			Kind:   errors.KindTemplateCycle,
			Detail: strings.Join(append(state.chain, filename), " -> "),
		})
	}

	content, ok := state.rc.Partials[filename]
	if !ok {
		return "", state.fail(&errors.RenderError{
			Bundle: state.ref.Name,
			Kind:   errors.KindMissingPartial,
			Detail: fmt.Sprintf("no partial named %q (have: %s)", filename, knownKeys(state.rc.Partials)),
		})
	}

	state.inProgress[filename] = true
	state.chain = append(state.chain, filename)
	defer func() {
		delete(state.inProgress, filename)
		state.chain = state.chain[:len(state.chain)-1]
	}()

	return e.execute(state, filename, content)
}

// knownKeys lists a map's keys for error detail, sorted for stable output.
func knownKeys(m map[string]string) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
