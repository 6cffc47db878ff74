package types

// RpcDef is one RPC entry in a ServiceDef: a path, and a request/response
// pair each carrying a streaming flag and a Deeply-Real Type Instance.
type RpcDef struct {
	Name       string
	ReqStream  bool
	ReqType    *Instance
	RespStream bool
	RespType   *Instance
}

// ServiceDef is a named RPC collection. It shares the package's symbol
// namespace with message/enum/string-enum definitions — within a package, a
// name uniquely identifies at most one of {message, enum, string-enum,
// service} — so it implements Def like the others.
type ServiceDef struct {
	Package string
	Name    string
	Rpcs    []*RpcDef
}

func (d *ServiceDef) PackageID() string { return d.Package }
func (d *ServiceDef) DefName() string   { return d.Name }
func (d *ServiceDef) Arity() int        { return 0 }
