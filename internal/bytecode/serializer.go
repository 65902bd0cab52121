package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Bytecode file format
// ====================
//
// Header (8 bytes):
//   - Magic number: the runtime's own magic number (4 bytes)
//   - Reserved: uint32, always zero (spec §6: "prefixed by the
//     runtime's magic number and a 4-byte zero")
//
// Body: one serialized code object (the module's own), code objects
// nesting recursively wherever a constant pool slot holds another
// code object.
//
// Each code object is written as:
//   name, filename string
//   firstlineno int32
//   args []string
//   varargs, varkwargs, newlocals bool (1 byte each)
//   freevars []string
//   docstring string, with a leading bool marking it present
//   consts: count + one tagged value per entry
//   names, varnames []string
//   code: count + one (opcode byte, int32 arg) pair per instruction

const (
	// MagicNumber is the runtime's own compiled-module magic number.
	MagicNumber = "JTC\x00"
)

const (
	tagNone = iota
	tagInt
	tagFloat
	tagBool
	tagString
	tagCode
	tagList
)

// Serializer writes compiled modules to the runtime's own binary
// bytecode format (spec §6).
type Serializer struct{}

func NewSerializer() *Serializer {
	return &Serializer{}
}

// SerializeModule writes m to binary format.
func (s *Serializer) SerializeModule(m *Module) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot serialize nil module")
	}

	buf := new(bytes.Buffer)
	buf.WriteString(MagicNumber)
	if err := binary.Write(buf, binary.LittleEndian, uint32(0)); err != nil {
		return nil, fmt.Errorf("failed to write reserved header word: %w", err)
	}

	if err := s.writeCode(buf, m.Code); err != nil {
		return nil, fmt.Errorf("failed to write module code object: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Serializer) writeCode(buf *bytes.Buffer, co *CodeObject) error {
	if err := s.writeString(buf, co.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if err := s.writeString(buf, co.Filename); err != nil {
		return fmt.Errorf("filename: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, int32(co.FirstLine)); err != nil {
		return fmt.Errorf("firstlineno: %w", err)
	}
	if err := s.writeStrings(buf, co.Args); err != nil {
		return fmt.Errorf("args: %w", err)
	}
	if err := s.writeBools(buf, co.Varargs, co.Varkwargs, co.NewLocals); err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	if err := s.writeStrings(buf, co.Freevars); err != nil {
		return fmt.Errorf("freevars: %w", err)
	}
	if err := s.writeDocstring(buf, co.Docstring); err != nil {
		return fmt.Errorf("docstring: %w", err)
	}
	if err := s.writeConsts(buf, co.Consts); err != nil {
		return fmt.Errorf("consts: %w", err)
	}
	if err := s.writeStrings(buf, co.Names); err != nil {
		return fmt.Errorf("names: %w", err)
	}
	if err := s.writeStrings(buf, co.Varnames); err != nil {
		return fmt.Errorf("varnames: %w", err)
	}
	if err := s.writeInstructions(buf, co.Code); err != nil {
		return fmt.Errorf("code: %w", err)
	}
	return nil
}

func (s *Serializer) writeString(buf *bytes.Buffer, str string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(str))); err != nil {
		return err
	}
	_, err := buf.WriteString(str)
	return err
}

func (s *Serializer) writeStrings(buf *bytes.Buffer, strs []string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(strs))); err != nil {
		return err
	}
	for _, str := range strs {
		if err := s.writeString(buf, str); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) writeBools(buf *bytes.Buffer, bs ...bool) error {
	for _, b := range bs {
		var v byte
		if b {
			v = 1
		}
		if err := buf.WriteByte(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) writeDocstring(buf *bytes.Buffer, doc *string) error {
	if doc == nil {
		return s.writeBools(buf, false)
	}
	if err := s.writeBools(buf, true); err != nil {
		return err
	}
	return s.writeString(buf, *doc)
}

func (s *Serializer) writeConsts(buf *bytes.Buffer, consts []interface{}) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(consts))); err != nil {
		return err
	}
	for i, c := range consts {
		if err := s.writeConst(buf, c); err != nil {
			return fmt.Errorf("const %d: %w", i, err)
		}
	}
	return nil
}

func (s *Serializer) writeConst(buf *bytes.Buffer, c interface{}) error {
	switch v := c.(type) {
	case nil:
		return buf.WriteByte(tagNone)
	case int64:
		if err := buf.WriteByte(tagInt); err != nil {
			return err
		}
		return binary.Write(buf, binary.LittleEndian, v)
	case float64:
		if err := buf.WriteByte(tagFloat); err != nil {
			return err
		}
		return binary.Write(buf, binary.LittleEndian, v)
	case bool:
		if err := buf.WriteByte(tagBool); err != nil {
			return err
		}
		return s.writeBools(buf, v)
	case string:
		if err := buf.WriteByte(tagString); err != nil {
			return err
		}
		return s.writeString(buf, v)
	case *CodeObject:
		if err := buf.WriteByte(tagCode); err != nil {
			return err
		}
		return s.writeCode(buf, v)
	case []interface{}:
		if err := buf.WriteByte(tagList); err != nil {
			return err
		}
		return s.writeConsts(buf, v)
	default:
		return fmt.Errorf("unsupported constant type %T", c)
	}
}

func (s *Serializer) writeInstructions(buf *bytes.Buffer, code []Instruction) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(code))); err != nil {
		return err
	}
	for _, instr := range code {
		if err := buf.WriteByte(byte(instr.Op)); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, instr.Arg); err != nil {
			return err
		}
	}
	return nil
}
