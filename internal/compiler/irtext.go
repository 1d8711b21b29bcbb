package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// opName/opFromName are an opcodeName-style switch for this IR's binary
// operators.
func opName(op BinaryOp) string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpEq:
		return "eq"
	case OpNotEq:
		return "ne"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpShl:
		return "shl"
	case OpShr:
		return "shr"
	case OpSar:
		return "sar"
	default:
		return fmt.Sprintf("op_%d", int(op))
	}
}

var opFromName = map[string]BinaryOp{
	"add": OpAdd, "sub": OpSub, "mul": OpMul, "div": OpDiv, "mod": OpMod,
	"eq": OpEq, "ne": OpNotEq, "lt": OpLt, "le": OpLe, "gt": OpGt, "ge": OpGe,
	"and": OpAnd, "or": OpOr, "xor": OpXor, "shl": OpShl, "shr": OpShr, "sar": OpSar,
}

// textPrinter assigns each anonymous Value a stable "%N" name when its
// defining instruction is printed, in definition order — the textual
// analogue of an SSA dump's temp numbering.
type textPrinter struct {
	sb    strings.Builder
	names map[*Value]string
	next  int
}

func newTextPrinter() *textPrinter {
	return &textPrinter{names: map[*Value]string{}}
}

func (p *textPrinter) bind(v *Value) string {
	n := fmt.Sprintf("%%%d", p.next)
	p.next++
	p.names[v] = n
	return n
}

func (p *textPrinter) ref(v *Value) string {
	if v == nil {
		return ""
	}
	if v.Name != "" {
		return v.Name
	}
	if v.Kind == KindInteger {
		return strconv.FormatInt(int64(v.Int), 10)
	}
	if n, ok := p.names[v]; ok {
		return n
	}
	panic("internal: irtext reference to a value with no assigned name")
}

func (p *textPrinter) constText(v *Value) string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindZeroInit:
		return "zeroinit"
	case KindAggregate:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = p.constText(e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		panic("internal: irtext non-constant value in constant position")
	}
}

// EmitText renders prog as the IR's textual form, disassembly-style via an
// opcodeName switch.
func EmitText(prog *Program) string {
	p := newTextPrinter()
	for _, g := range prog.Globals {
		fmt.Fprintf(&p.sb, "global %s: %s = %s\n", g.Name, g.Type.Base.String(), p.constText(g.Init))
	}
	if len(prog.Globals) > 0 {
		p.sb.WriteString("\n")
	}
	for _, fn := range prog.Funcs {
		p.printFunc(fn)
	}
	return p.sb.String()
}

func (p *textPrinter) printFunc(fn *Function) {
	p.names = map[*Value]string{}
	p.next = 0

	argNames := make([]string, len(fn.Type.Params))
	for i, t := range fn.Type.Params {
		name := fmt.Sprintf("%%arg%d", i)
		argNames[i] = name + ": " + t.String()
		if i < len(fn.Params) {
			p.names[fn.Params[i]] = name
		}
	}
	sig := fmt.Sprintf("(%s): %s", strings.Join(argNames, ", "), fn.Type.Ret.String())

	if fn.IsDecl() {
		fmt.Fprintf(&p.sb, "decl %s%s\n\n", fn.Name, sig)
		return
	}

	fmt.Fprintf(&p.sb, "fun %s%s {\n", fn.Name, sig)
	for _, bb := range fn.BBs {
		p.printBlock(bb)
	}
	p.sb.WriteString("}\n\n")
}

func (p *textPrinter) printBlock(bb *BasicBlock) {
	fmt.Fprintf(&p.sb, "%s:\n", bb.Name)
	for _, inst := range bb.Insts {
		p.printInst(inst)
	}
}

func (p *textPrinter) printInst(v *Value) {
	switch v.Kind {
	case KindAlloc:
		fmt.Fprintf(&p.sb, "  %s = alloc %s\n", p.bind(v), v.Type.Base.String())
	case KindLoad:
		fmt.Fprintf(&p.sb, "  %s = load %s\n", p.bind(v), p.ref(v.Src))
	case KindStore:
		fmt.Fprintf(&p.sb, "  store %s, %s\n", p.ref(v.StoreValue), p.ref(v.StoreDest))
	case KindGetElemPtr:
		fmt.Fprintf(&p.sb, "  %s = getelemptr %s, %s\n", p.bind(v), p.ref(v.Src), p.ref(v.Index))
	case KindGetPtr:
		fmt.Fprintf(&p.sb, "  %s = getptr %s, %s\n", p.bind(v), p.ref(v.Src), p.ref(v.Index))
	case KindBinary:
		fmt.Fprintf(&p.sb, "  %s = %s %s, %s\n", p.bind(v), opName(v.Op), p.ref(v.Lhs), p.ref(v.Rhs))
	case KindBranch:
		fmt.Fprintf(&p.sb, "  br %s, %s, %s\n", p.ref(v.Cond), v.TrueBB.Name, v.FalseBB.Name)
	case KindJump:
		fmt.Fprintf(&p.sb, "  jump %s\n", v.Target.Name)
	case KindCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = p.ref(a)
		}
		callText := fmt.Sprintf("call %s(%s)", v.Callee.Name, strings.Join(args, ", "))
		if v.Type.Equal(Unit) {
			fmt.Fprintf(&p.sb, "  %s\n", callText)
		} else {
			fmt.Fprintf(&p.sb, "  %s = %s\n", p.bind(v), callText)
		}
	case KindReturn:
		if v.RetValue == nil {
			p.sb.WriteString("  ret\n")
		} else {
			fmt.Fprintf(&p.sb, "  ret %s\n", p.ref(v.RetValue))
		}
	default:
		panic(fmt.Sprintf("internal: irtext cannot print value kind %d", v.Kind))
	}
}

// ---- parsing ----

// textParser reconstructs a Program from EmitText's output. It is a
// two-level parser: a per-Program pass resolves @global/@function names (all
// declared before any function body can reference them, since every global
// and decl/fun signature line is self-contained), and a per-function pass
// resolves %value and block-label names, pre-creating every block so
// forward jump/br targets are always already defined.
type textParser struct {
	globals map[string]*Value
	funcs   map[string]*Function
}

// ParseText parses text back into a Program. It is the exact inverse of
// EmitText: ParseText(EmitText(p)) must reproduce p's observable shape.
func ParseText(text string) (*Program, error) {
	lines := splitNonEmptyLines(text)
	tp := &textParser{globals: map[string]*Value{}, funcs: map[string]*Function{}}
	prog := NewProgram()

	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "global "):
			g, err := tp.parseGlobal(line)
			if err != nil {
				return nil, errors.Wrapf(err, "line %q", line)
			}
			prog.Globals = append(prog.Globals, g)
			tp.globals[g.Name] = g
			i++
		case strings.HasPrefix(line, "decl "):
			fn, err := tp.parseDecl(line)
			if err != nil {
				return nil, errors.Wrapf(err, "line %q", line)
			}
			prog.Funcs = append(prog.Funcs, fn)
			tp.funcs[fn.Name] = fn
			i++
		case strings.HasPrefix(line, "fun "):
			end := findBlockEnd(lines, i)
			fn, err := tp.parseFunc(lines[i : end+1])
			if err != nil {
				return nil, errors.Wrapf(err, "function at line %q", line)
			}
			prog.Funcs = append(prog.Funcs, fn)
			tp.funcs[fn.Name] = fn
			i = end + 1
		default:
			return nil, errors.Errorf("unexpected line %q", line)
		}
	}
	return prog, nil
}

func splitNonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, strings.TrimRight(l, " \t\r"))
		}
	}
	return out
}

func findBlockEnd(lines []string, start int) int {
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "}" {
			return i
		}
	}
	return len(lines) - 1
}

// parseSig parses "(%arg0: i32, %arg1: *i32): unit" into param names/types
// and a return type.
func parseSig(s string) (names []string, types []*Type, ret *Type, err error) {
	open := strings.Index(s, "(")
	shut := strings.Index(s, ")")
	if open < 0 || shut < open {
		return nil, nil, nil, errors.New("malformed signature")
	}
	params := strings.TrimSpace(s[open+1 : shut])
	rest := strings.TrimSpace(s[shut+1:])
	rest = strings.TrimPrefix(rest, ":")
	ret, err = parseType(strings.TrimSpace(rest))
	if err != nil {
		return nil, nil, nil, err
	}
	if params == "" {
		return nil, nil, ret, nil
	}
	for _, p := range splitTopLevel(params, ',') {
		p = strings.TrimSpace(p)
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, nil, nil, errors.Errorf("malformed parameter %q", p)
		}
		names = append(names, strings.TrimSpace(parts[0]))
		t, err := parseType(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, nil, nil, err
		}
		types = append(types, t)
	}
	return names, types, ret, nil
}

func (tp *textParser) parseDecl(line string) (*Function, error) {
	rest := strings.TrimPrefix(line, "decl ")
	sp := strings.IndexAny(rest, "(")
	if sp < 0 {
		return nil, errors.New("malformed decl line")
	}
	name := strings.TrimSpace(rest[:sp])
	_, types, ret, err := parseSig(rest[sp:])
	if err != nil {
		return nil, err
	}
	return &Function{Name: name, Type: FuncType(types, ret)}, nil
}

func (tp *textParser) parseGlobal(line string) (*Value, error) {
	rest := strings.TrimPrefix(line, "global ")
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return nil, errors.New("malformed global line")
	}
	head := strings.TrimSpace(rest[:eq])
	initText := strings.TrimSpace(rest[eq+1:])
	colon := strings.Index(head, ":")
	if colon < 0 {
		return nil, errors.New("malformed global line")
	}
	name := strings.TrimSpace(head[:colon])
	base, err := parseType(strings.TrimSpace(head[colon+1:]))
	if err != nil {
		return nil, err
	}
	init, err := tp.parseConst(initText, base)
	if err != nil {
		return nil, err
	}
	return &Value{Type: PointerTo(base), Kind: KindGlobalAlloc, Name: name, Init: init}, nil
}

func (tp *textParser) parseConst(s string, t *Type) (*Value, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "zeroinit":
		return NewZeroInit(t), nil
	case strings.HasPrefix(s, "{"):
		if !strings.HasSuffix(s, "}") {
			return nil, errors.Errorf("malformed aggregate %q", s)
		}
		inner := s[1 : len(s)-1]
		parts := splitTopLevel(inner, ',')
		elems := make([]*Value, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			e, err := tp.parseConst(part, t.Base)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return NewAggregate(t, elems), nil
	default:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, errors.Errorf("malformed integer constant %q", s)
		}
		return NewInteger(int32(n)), nil
	}
}

func (tp *textParser) parseFunc(lines []string) (*Function, error) {
	header := lines[0]
	rest := strings.TrimPrefix(header, "fun ")
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "{")
	sp := strings.IndexAny(rest, "(")
	name := strings.TrimSpace(rest[:sp])
	argNames, types, ret, err := parseSig(rest[sp:])
	if err != nil {
		return nil, err
	}

	fn := &Function{Name: name, Type: FuncType(types, ret)}
	// Registered before the body so a recursive call resolves.
	tp.funcs[name] = fn
	values := map[string]*Value{}
	for i, an := range argNames {
		v := &Value{Type: types[i], Kind: KindFuncArgRef, ArgIndex: i}
		fn.Params = append(fn.Params, v)
		values[an] = v
	}

	body := lines[1 : len(lines)-1]

	// Pass 1: create every block up front so forward branch/jump targets
	// always resolve.
	blocks := map[string]*BasicBlock{}
	for _, l := range body {
		l = strings.TrimSpace(l)
		if strings.HasSuffix(l, ":") {
			label := strings.TrimSuffix(l, ":")
			bb := &BasicBlock{Name: label}
			blocks[label] = bb
			fn.BBs = append(fn.BBs, bb)
		}
	}

	var cur *BasicBlock
	for _, raw := range body {
		l := strings.TrimSpace(raw)
		if strings.HasSuffix(l, ":") {
			cur = blocks[strings.TrimSuffix(l, ":")]
			continue
		}
		if cur == nil {
			return nil, errors.Errorf("instruction %q outside any block", l)
		}
		inst, err := tp.parseInst(l, values, blocks, fn)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %q", l)
		}
		cur.Insts = append(cur.Insts, inst)
	}
	return fn, nil
}

func (tp *textParser) resolveOperand(tok string, values map[string]*Value) (*Value, error) {
	tok = strings.TrimSpace(tok)
	if v, ok := values[tok]; ok {
		return v, nil
	}
	if v, ok := tp.globals[tok]; ok {
		return v, nil
	}
	if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return NewInteger(int32(n)), nil
	}
	return nil, errors.Errorf("unresolved operand %q", tok)
}

func (tp *textParser) parseInst(l string, values map[string]*Value, blocks map[string]*BasicBlock, fn *Function) (*Value, error) {
	var dest string
	rhs := l
	if eq := strings.Index(l, " = "); eq >= 0 {
		dest = strings.TrimSpace(l[:eq])
		rhs = strings.TrimSpace(l[eq+3:])
	}

	fields := strings.SplitN(rhs, " ", 2)
	op := fields[0]
	var argStr string
	if len(fields) > 1 {
		argStr = fields[1]
	}
	args := splitTopLevel(argStr, ',')
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}

	var v *Value
	switch op {
	case "alloc":
		base, err := parseType(argStr)
		if err != nil {
			return nil, err
		}
		v = &Value{Type: PointerTo(base), Kind: KindAlloc}
	case "load":
		src, err := tp.resolveOperand(args[0], values)
		if err != nil {
			return nil, err
		}
		v = &Value{Type: ptrBase(src.Type), Kind: KindLoad, Src: src}
	case "store":
		val, err := tp.resolveOperand(args[0], values)
		if err != nil {
			return nil, err
		}
		destPtr, err := tp.resolveOperand(args[1], values)
		if err != nil {
			return nil, err
		}
		return &Value{Type: Unit, Kind: KindStore, StoreValue: val, StoreDest: destPtr}, nil
	case "getelemptr":
		src, err := tp.resolveOperand(args[0], values)
		if err != nil {
			return nil, err
		}
		idx, err := tp.resolveOperand(args[1], values)
		if err != nil {
			return nil, err
		}
		v = &Value{Type: PointerTo(ptrBase(src.Type).Base), Kind: KindGetElemPtr, Src: src, Index: idx}
	case "getptr":
		src, err := tp.resolveOperand(args[0], values)
		if err != nil {
			return nil, err
		}
		idx, err := tp.resolveOperand(args[1], values)
		if err != nil {
			return nil, err
		}
		v = &Value{Type: src.Type, Kind: KindGetPtr, Src: src, Index: idx}
	case "br":
		cond, err := tp.resolveOperand(args[0], values)
		if err != nil {
			return nil, err
		}
		t, ok := blocks[args[1]]
		if !ok {
			return nil, errors.Errorf("unknown block %q", args[1])
		}
		f, ok := blocks[args[2]]
		if !ok {
			return nil, errors.Errorf("unknown block %q", args[2])
		}
		return &Value{Type: Unit, Kind: KindBranch, Cond: cond, TrueBB: t, FalseBB: f}, nil
	case "jump":
		t, ok := blocks[strings.TrimSpace(argStr)]
		if !ok {
			return nil, errors.Errorf("unknown block %q", argStr)
		}
		return &Value{Type: Unit, Kind: KindJump, Target: t}, nil
	case "call":
		open := strings.Index(rhs[len(op):], "(")
		calleeName := strings.TrimSpace(rhs[len(op) : len(op)+open])
		callee, ok := tp.funcs[calleeName]
		if !ok {
			return nil, errors.Errorf("unknown function %q", calleeName)
		}
		inner := strings.TrimSuffix(strings.TrimSpace(rhs[len(op)+open+1:]), ")")
		var callArgs []*Value
		for _, a := range splitTopLevel(inner, ',') {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			av, err := tp.resolveOperand(a, values)
			if err != nil {
				return nil, err
			}
			callArgs = append(callArgs, av)
		}
		v = &Value{Type: callee.Type.Ret, Kind: KindCall, Callee: callee, Args: callArgs}
	case "ret":
		if argStr == "" {
			return &Value{Type: Unit, Kind: KindReturn}, nil
		}
		rv, err := tp.resolveOperand(argStr, values)
		if err != nil {
			return nil, err
		}
		return &Value{Type: Unit, Kind: KindReturn, RetValue: rv}, nil
	default:
		if opv, ok := opFromName[op]; ok {
			lhs, err := tp.resolveOperand(args[0], values)
			if err != nil {
				return nil, err
			}
			rhsV, err := tp.resolveOperand(args[1], values)
			if err != nil {
				return nil, err
			}
			v = &Value{Type: Int32, Kind: KindBinary, Op: opv, Lhs: lhs, Rhs: rhsV}
			break
		}
		return nil, errors.Errorf("unknown opcode %q", op)
	}
	if dest != "" {
		values[dest] = v
	}
	return v, nil
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets/parens/braces (needed for nested array types and call argument
// lists).
func splitTopLevel(s string, sep byte) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// parseType is the inverse of Type.String() for the subset of types that
// appear in storable positions (i32, unit, pointer, array).
func parseType(s string) (*Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "i32":
		return Int32, nil
	case s == "unit":
		return Unit, nil
	case strings.HasPrefix(s, "*"):
		base, err := parseType(s[1:])
		if err != nil {
			return nil, err
		}
		return PointerTo(base), nil
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		inner := s[1 : len(s)-1]
		depth := 0
		splitIdx := -1
	scan:
		for i := len(inner) - 1; i >= 0; i-- {
			switch inner[i] {
			case ']':
				depth++
			case '[':
				depth--
			case ',':
				if depth == 0 {
					splitIdx = i
					break scan
				}
			}
		}
		if splitIdx < 0 {
			return nil, errors.Errorf("malformed array type %q", s)
		}
		base, err := parseType(inner[:splitIdx])
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(inner[splitIdx+1:]))
		if err != nil {
			return nil, err
		}
		return ArrayOf(base, n), nil
	default:
		return nil, errors.Errorf("unknown type %q", s)
	}
}
