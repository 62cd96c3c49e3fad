package server

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
)

// MethodFunc handles one call of a registered method
type MethodFunc func(ctx context.Context, req *urlmsg.Message) (*urlmsg.Message, error)

// Dispatcher maps command names to method handlers. The table is built at
// registration time, a request for an unknown command fails with
// "missing method: <name>".
type Dispatcher struct {
	engine   *marshal.Engine
	methods  *xsync.MapOf[string, MethodFunc]
	registry gometrics.Registry
}

// MethodStats is a snapshot of the call statistics of one method
type MethodStats struct {
	Calls  int64
	Errors int64
	Mean   time.Duration
	P99    time.Duration
}

// NewDispatcher creates an empty dispatcher that (de)serializes arguments and results
// with e
func NewDispatcher(e *marshal.Engine) *Dispatcher {
	return &Dispatcher{
		engine:   e,
		methods:  xsync.NewMapOf[string, MethodFunc](),
		registry: gometrics.NewRegistry(),
	}
}

// Engine returns the engine used for arguments and results
func (d *Dispatcher) Engine() *marshal.Engine {
	return d.engine
}

// Register adds the method name. The arguments are decoded from the root of the
// request message into Req, the result is encoded at the root of the result message.
// Both types must be serializable by the engine of the dispatcher.
func Register[Req, Resp any](d *Dispatcher, name string, fn func(ctx context.Context, req Req) (Resp, error)) error {
	for _, t := range []reflect.Type{reflect.TypeFor[Req](), reflect.TypeFor[Resp]()} {
		if err := d.checkType(t); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}

	handler := func(ctx context.Context, msg *urlmsg.Message) (*urlmsg.Message, error) {
		var req Req
		if err := d.engine.DecodeInto(msg, urlmsg.RootKey, &req); err != nil {
			return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
		}

		resp, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}

		out := common.NewResultResponse()
		if err := d.engine.EncodeValue(out, urlmsg.RootKey, reflect.ValueOf(&resp).Elem(), reflect.TypeFor[Resp]()); err != nil {
			return nil, fmt.Errorf("invalid result of %s: %w", name, err)
		}
		return out, nil
	}

	return d.RegisterFunc(name, handler)
}

// RegisterFunc adds a method working on the raw messages
func (d *Dispatcher) RegisterFunc(name string, fn MethodFunc) error {
	if name == "" {
		return fmt.Errorf("register: empty method name")
	}
	if _, loaded := d.methods.LoadOrStore(name, fn); loaded {
		return fmt.Errorf("register %s: method already registered", name)
	}
	return nil
}

// Methods returns the sorted names of all registered methods
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, d.methods.Size())
	d.methods.Range(func(name string, _ MethodFunc) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// --------------------------------------------------------------------------
// Interface Methods (docu see server.IRPCServerAdapter)
// --------------------------------------------------------------------------

func (d *Dispatcher) Handle(ctx context.Context, req *urlmsg.Message) (resp *urlmsg.Message) {
	fn, ok := d.methods.Load(req.Command)
	if !ok {
		gometrics.GetOrRegisterCounter("missing", d.registry).Inc(1)
		return common.NewErrorResponse(fmt.Errorf("missing method: %s", req.Command))
	}

	timer := gometrics.GetOrRegisterTimer(req.Command+".calls", d.registry)
	start := time.Now()
	defer timer.UpdateSince(start)

	defer func() {
		if r := recover(); r != nil {
			Logger.Errorf("method %s panicked: %v", req.Command, r)
			gometrics.GetOrRegisterCounter(req.Command+".errors", d.registry).Inc(1)
			resp = common.NewErrorResponse(fmt.Errorf("method %s failed: %v", req.Command, r))
		}
	}()

	out, err := fn(ctx, req)
	if err != nil {
		Logger.Debugf("method %s failed: %v", req.Command, err)
		gometrics.GetOrRegisterCounter(req.Command+".errors", d.registry).Inc(1)
		return common.NewErrorResponse(err)
	}
	return out
}

// --------------------------------------------------------------------------
// Statistics
// --------------------------------------------------------------------------

// Stats returns the call statistics of all methods that were called at least once
func (d *Dispatcher) Stats() map[string]MethodStats {
	stats := make(map[string]MethodStats)
	for _, name := range d.Methods() {
		timer, ok := d.registry.Get(name + ".calls").(gometrics.Timer)
		if !ok {
			continue
		}
		snapshot := timer.Snapshot()
		s := MethodStats{
			Calls: snapshot.Count(),
			Mean:  time.Duration(snapshot.Mean()),
			P99:   time.Duration(snapshot.Percentile(0.99)),
		}
		if c, ok := d.registry.Get(name + ".errors").(gometrics.Counter); ok {
			s.Errors = c.Count()
		}
		stats[name] = s
	}
	return stats
}

// MissingCalls returns the number of requests for unknown methods
func (d *Dispatcher) MissingCalls() int64 {
	if c, ok := d.registry.Get("missing").(gometrics.Counter); ok {
		return c.Count()
	}
	return 0
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// checkType fails if the engine can neither classify t nor has a custom serializer
func (d *Dispatcher) checkType(t reflect.Type) error {
	if _, ok := d.engine.LookupCustom(t); ok {
		return nil
	}
	_, err := d.engine.Types().Classify(t)
	return err
}
