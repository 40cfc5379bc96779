// Package bridge exposes the registry over gRPC so foreign-language
// callers can create instances and invoke methods without knowing the
// concrete Go types. The service descriptor is parsed from the embedded
// proto source at startup and served with dynamic messages; no generated
// stubs are involved.
package bridge

import (
	"context"
	_ "embed"
	"fmt"
	"net"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/ctorex/pkg/ctorex"
)

//go:embed bridge.proto
var protoSource string

const protoFile = "bridge.proto"

// Server serves the ObjectBridge service. Instances created over the
// bridge are retained in a session table keyed by handle token until the
// caller releases them.
type Server struct {
	reg  *ctorex.Registry
	grpc *grpc.Server

	service *desc.ServiceDescriptor
	argDesc *desc.MessageDescriptor
	msgs    map[string]*desc.MessageDescriptor

	mu       sync.Mutex
	sessions map[string]*ctorex.Instance
}

// New parses the embedded service definition and wires the handlers
// against the given registry.
func New(reg *ctorex.Registry) (*Server, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
	}
	fds, err := parser.ParseFiles(protoFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bridge proto: %w", err)
	}
	fd := fds[0]

	sd := fd.FindService("ctorex.bridge.v1.ObjectBridge")
	if sd == nil {
		return nil, fmt.Errorf("bridge proto is missing the ObjectBridge service")
	}

	s := &Server{
		reg:      reg,
		grpc:     grpc.NewServer(),
		service:  sd,
		argDesc:  fd.FindMessage("ctorex.bridge.v1.Argument"),
		msgs:     make(map[string]*desc.MessageDescriptor),
		sessions: make(map[string]*ctorex.Instance),
	}
	for _, md := range fd.GetMessageTypes() {
		s.msgs[md.GetName()] = md
	}

	s.grpc.RegisterService(s.serviceDesc(), s)
	return s, nil
}

// serviceDesc builds the grpc service descriptor by hand, one unary
// handler per method of the parsed service.
func (s *Server) serviceDesc() *grpc.ServiceDesc {
	sd := &grpc.ServiceDesc{
		ServiceName: s.service.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Metadata:    protoFile,
	}

	for _, method := range s.service.GetMethods() {
		md := method
		sd.Methods = append(sd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				return srv.(*Server).handleUnary(ctx, md, dec)
			},
		})
	}
	return sd
}

func (s *Server) handleUnary(ctx context.Context, md *desc.MethodDescriptor, dec func(interface{}) error) (interface{}, error) {
	in := dynamic.NewMessage(md.GetInputType())
	if err := dec(in); err != nil {
		return nil, err
	}

	switch md.GetName() {
	case "Create":
		return s.handleCreate(in)
	case "CallMethod":
		return s.handleCallMethod(in)
	case "CallStatic":
		return s.handleCallStatic(in)
	case "Release":
		return s.handleRelease(in)
	}
	return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", md.GetName())
}

func (s *Server) handleCreate(in *dynamic.Message) (*dynamic.Message, error) {
	expression, _ := in.GetFieldByName("expression").(string)
	capability, _ := in.GetFieldByName("capability").(string)

	var inst *ctorex.Instance
	var err error
	if capability != "" {
		inst, err = s.reg.Create(expression, capability)
	} else {
		inst, err = s.reg.Create(expression)
	}
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	handle := s.retain(inst)
	out := dynamic.NewMessage(s.msgs["CreateResponse"])
	out.SetFieldByName("handle", handle)
	out.SetFieldByName("type_name", inst.Descriptor.Name)
	return out, nil
}

func (s *Server) handleCallMethod(in *dynamic.Message) (*dynamic.Message, error) {
	handle, _ := in.GetFieldByName("handle").(string)
	method, _ := in.GetFieldByName("method").(string)

	inst, ok := s.lookup(handle)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown instance handle %q", handle)
	}

	args, err := s.decodeArgs(in)
	if err != nil {
		return nil, err
	}

	result, err := s.reg.CallMethod(inst, method, args)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return s.callResponse(result)
}

func (s *Server) handleCallStatic(in *dynamic.Message) (*dynamic.Message, error) {
	typeName, _ := in.GetFieldByName("type_name").(string)
	function, _ := in.GetFieldByName("function").(string)

	args, err := s.decodeArgs(in)
	if err != nil {
		return nil, err
	}

	result, err := s.reg.CallStatic(typeName, function, args)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return s.callResponse(result)
}

func (s *Server) handleRelease(in *dynamic.Message) (*dynamic.Message, error) {
	handle, _ := in.GetFieldByName("handle").(string)

	s.mu.Lock()
	_, ok := s.sessions[handle]
	delete(s.sessions, handle)
	s.mu.Unlock()

	out := dynamic.NewMessage(s.msgs["ReleaseResponse"])
	out.SetFieldByName("released", ok)
	return out, nil
}

// Serve listens on addr and blocks until Stop is called.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.grpc.Serve(lis)
}

// ServeAsync listens on addr and serves in the background, returning the
// bound address (useful with a ":0" port).
func (s *Server) ServeAsync(addr string) (string, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	go func() {
		_ = s.grpc.Serve(lis)
	}()
	return lis.Addr().String(), nil
}

func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

func (s *Server) retain(inst *ctorex.Instance) string {
	handle := inst.ID.String()
	s.mu.Lock()
	s.sessions[handle] = inst
	s.mu.Unlock()
	return handle
}

func (s *Server) lookup(handle string) (*ctorex.Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.sessions[handle]
	return inst, ok
}

func (s *Server) decodeArgs(in *dynamic.Message) ([]ctorex.Value, error) {
	raw, _ := in.GetFieldByName("args").([]interface{})
	args := make([]ctorex.Value, 0, len(raw))
	for i, el := range raw {
		msg, err := asDynamic(el)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "argument %d: %v", i+1, err)
		}
		v, err := s.argumentToValue(msg)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "argument %d: %v", i+1, err)
		}
		args = append(args, v)
	}
	return args, nil
}

func (s *Server) argumentToValue(m *dynamic.Message) (ctorex.Value, error) {
	switch {
	case m.HasFieldName("int_value"):
		return ctorex.Int(m.GetFieldByName("int_value").(int64)), nil
	case m.HasFieldName("float_value"):
		return ctorex.Flt(m.GetFieldByName("float_value").(float64)), nil
	case m.HasFieldName("symbol"):
		return ctorex.Sym(m.GetFieldByName("symbol").(string)), nil
	case m.HasFieldName("list"):
		listMsg, err := asDynamic(m.GetFieldByName("list"))
		if err != nil {
			return nil, err
		}
		raw, _ := listMsg.GetFieldByName("elements").([]interface{})
		els := make([]ctorex.Value, 0, len(raw))
		for _, el := range raw {
			elMsg, err := asDynamic(el)
			if err != nil {
				return nil, err
			}
			v, err := s.argumentToValue(elMsg)
			if err != nil {
				return nil, err
			}
			els = append(els, v)
		}
		return ctorex.Lst(els...), nil
	case m.HasFieldName("handle"):
		handle := m.GetFieldByName("handle").(string)
		inst, ok := s.lookup(handle)
		if !ok {
			return nil, fmt.Errorf("unknown instance handle %q", handle)
		}
		return inst, nil
	}
	return nil, fmt.Errorf("argument has no kind set")
}

// callResponse boxes a dispatch result into a CallResponse. Instance
// results are retained in the session table so the caller can keep
// driving them by handle.
func (s *Server) callResponse(result ctorex.Value) (*dynamic.Message, error) {
	out := dynamic.NewMessage(s.msgs["CallResponse"])
	if result == nil {
		return out, nil
	}
	arg, err := s.valueToArgument(result)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out.SetFieldByName("result", arg)
	return out, nil
}

func (s *Server) valueToArgument(v ctorex.Value) (*dynamic.Message, error) {
	m := dynamic.NewMessage(s.argDesc)
	switch val := v.(type) {
	case *ctorex.Integer:
		m.SetFieldByName("int_value", val.Value)
	case *ctorex.Float:
		m.SetFieldByName("float_value", val.Value)
	case *ctorex.Symbol:
		m.SetFieldByName("symbol", val.Name)
	case *ctorex.List:
		listMsg := dynamic.NewMessage(s.msgs["ValueList"])
		for _, el := range val.Elements {
			elMsg, err := s.valueToArgument(el)
			if err != nil {
				return nil, err
			}
			listMsg.AddRepeatedFieldByName("elements", elMsg)
		}
		m.SetFieldByName("list", listMsg)
	case *ctorex.Instance:
		m.SetFieldByName("handle", s.retain(val))
	default:
		return nil, fmt.Errorf("unsupported value kind %s", v.Kind())
	}
	return m, nil
}

func asDynamic(v interface{}) (*dynamic.Message, error) {
	if msg, ok := v.(*dynamic.Message); ok {
		return msg, nil
	}
	return nil, fmt.Errorf("unexpected message type %T", v)
}
