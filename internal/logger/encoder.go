package logger

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "15:04:05"

var (
	pool = buffer.NewPool()

	// Used for the leading time, level and domain columns.
	lineConfig = zapcore.EncoderConfig{
		LevelKey:       "level",
		TimeKey:        "time",
		MessageKey:     "msg",
		CallerKey:      "caller",
		EncodeLevel:    encodeLevel,
		EncodeTime:     encodeTime,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     encodeName,
	}
	// Used for the trailing fields only. The keys are left empty so nothing is printed twice.
	fieldConfig = zapcore.EncoderConfig{
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     encodeTime,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	levelColors = map[zapcore.Level]*color.Color{
		zapcore.DPanicLevel: color.New(color.FgHiRed),
		zapcore.PanicLevel:  color.New(color.FgHiRed),
		zapcore.FatalLevel:  color.New(color.FgRed),
		zapcore.ErrorLevel:  color.New(color.FgRed),
		zapcore.WarnLevel:   color.New(color.FgYellow),
		zapcore.InfoLevel:   color.New(color.FgBlue),
		zapcore.DebugLevel:  color.New(color.FgMagenta),
	}

	namePattern string
	fieldIndent string
)

func init() {
	var width int
	for name := range domainFromString {
		width = max(width, len(name))
	}
	namePattern = fmt.Sprintf("%%-%ds", width+1)
	// Time (9), padded level (8) and the padded domain name.
	fieldIndent = "\n" + strings.Repeat(" ", 17+width+1)
}

type consoleEncoder struct {
	zapcore.Encoder
	zapcore.EncoderConfig
}

func newEncoder() *consoleEncoder {
	return &consoleEncoder{
		Encoder:       zapcore.NewConsoleEncoder(fieldConfig),
		EncoderConfig: lineConfig,
	}
}

func (e *consoleEncoder) Clone() zapcore.Encoder {
	return &consoleEncoder{
		Encoder:       e.Encoder.Clone(),
		EncoderConfig: e.EncoderConfig,
	}
}

func (e *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	cols := &columns{}
	e.EncodeTime(ent.Time, cols)
	e.EncodeLevel(ent.Level, cols)
	e.EncodeName(ent.LoggerName, cols)
	if ent.Caller.Defined && e.EncodeCaller != nil {
		e.EncodeCaller(ent.Caller, cols)
	}
	cols.AppendString(ent.Message)

	line := pool.Get()
	for i, c := range cols.elems {
		if i > 0 {
			line.AppendByte(' ')
		}
		fmt.Fprint(line, c)
	}

	// Info is what users see during a normal run so it stays free of context fields.
	if ent.Level == zapcore.InfoLevel {
		line.AppendByte('\n')
		return line, nil
	}

	encoded, err := e.Encoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		line.Free()
		return nil, err
	}
	defer encoded.Free()

	if ctx := bytes.TrimSpace(encoded.Bytes()); len(ctx) > 0 {
		line.AppendString(fieldIndent)
		_, _ = line.Write(ctx)
	}
	line.AppendByte('\n')
	return line, nil
}

func encodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(timeLayout))
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	c, ok := levelColors[l]
	if !ok {
		enc.AppendString(fmt.Sprintf("%-7s", l))
		return
	}
	enc.AppendString(c.Sprintf("%-7s", l))
}

func encodeName(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf(namePattern, name))
}

// columns collects the leading entry elements so they can be joined with single spaces.
type columns struct {
	elems []interface{}
}

func (c *columns) AppendArray(v zapcore.ArrayMarshaler) error {
	nested := &columns{}
	err := v.MarshalLogArray(nested)
	c.elems = append(c.elems, nested.elems)
	return err
}

func (c *columns) AppendObject(v zapcore.ObjectMarshaler) error {
	m := zapcore.NewMapObjectEncoder()
	err := v.MarshalLogObject(m)
	c.elems = append(c.elems, m.Fields)
	return err
}

func (c *columns) AppendReflected(v interface{}) error {
	c.elems = append(c.elems, v)
	return nil
}

func (c *columns) AppendBool(v bool)              { c.elems = append(c.elems, v) }
func (c *columns) AppendByteString(v []byte)      { c.elems = append(c.elems, string(v)) }
func (c *columns) AppendComplex128(v complex128)  { c.elems = append(c.elems, v) }
func (c *columns) AppendComplex64(v complex64)    { c.elems = append(c.elems, v) }
func (c *columns) AppendDuration(v time.Duration) { c.elems = append(c.elems, v) }
func (c *columns) AppendFloat64(v float64)        { c.elems = append(c.elems, v) }
func (c *columns) AppendFloat32(v float32)        { c.elems = append(c.elems, v) }
func (c *columns) AppendInt(v int)                { c.elems = append(c.elems, v) }
func (c *columns) AppendInt64(v int64)            { c.elems = append(c.elems, v) }
func (c *columns) AppendInt32(v int32)            { c.elems = append(c.elems, v) }
func (c *columns) AppendInt16(v int16)            { c.elems = append(c.elems, v) }
func (c *columns) AppendInt8(v int8)              { c.elems = append(c.elems, v) }
func (c *columns) AppendString(v string)          { c.elems = append(c.elems, v) }
func (c *columns) AppendTime(v time.Time)         { c.elems = append(c.elems, v) }
func (c *columns) AppendUint(v uint)              { c.elems = append(c.elems, v) }
func (c *columns) AppendUint64(v uint64)          { c.elems = append(c.elems, v) }
func (c *columns) AppendUint32(v uint32)          { c.elems = append(c.elems, v) }
func (c *columns) AppendUint16(v uint16)          { c.elems = append(c.elems, v) }
func (c *columns) AppendUint8(v uint8)            { c.elems = append(c.elems, v) }
func (c *columns) AppendUintptr(v uintptr)        { c.elems = append(c.elems, v) }
