package logger

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Domain uint8

const (
	UnknownDomain Domain = iota
	AllDomain
	InitDomain
	CLIDomain
	UpdateDomain
	LockDomain
	FileSystemDomain
	GCSDomain
	GitDomain
	GitHubDomain
	HTTPSDomain
	S3Domain
)

var (
	domainFromString = map[string]Domain{
		"all":    AllDomain,
		"init":   InitDomain,
		"cli":    CLIDomain,
		"update": UpdateDomain,
		"lock":   LockDomain,
		"fs":     FileSystemDomain,
		"gcs":    GCSDomain,
		"git":    GitDomain,
		"github": GitHubDomain,
		"https":  HTTPSDomain,
		"s3":     S3Domain,
	}

	stringFromDomain = func() map[Domain]string {
		m := make(map[Domain]string, len(domainFromString))
		for s, d := range domainFromString {
			m[d] = s
		}
		return m
	}()
)

func (d Domain) String() string {
	if s, ok := stringFromDomain[d]; ok {
		return s
	}
	return "unknown"
}

// Builder hands out named loggers per domain. Levels can be lowered per domain, typically through
// the --verbose flag, before the first logger for that domain is requested.
type Builder struct {
	log          *zap.Logger
	defaultLevel zapcore.Level
	domainLevels map[Domain]zapcore.Level
	cache        map[Domain]*zap.Logger
}

func NewBuilder(out zapcore.WriteSyncer) *Builder {
	return newBuilder(zap.New(zapcore.NewCore(newEncoder(), out, zapcore.DebugLevel)))
}

// NewTestBuilder discards everything that is logged.
func NewTestBuilder() *Builder {
	return newBuilder(zap.New(zapcore.NewCore(newEncoder(), zapcore.AddSync(io.Discard), zapcore.DebugLevel)))
}

func newBuilder(log *zap.Logger) *Builder {
	return &Builder{
		log:          log,
		defaultLevel: zapcore.InfoLevel,
		domainLevels: map[Domain]zapcore.Level{},
		cache:        map[Domain]*zap.Logger{},
	}
}

func (b *Builder) SetDomainLevel(domain string, level zapcore.Level) {
	d := domainFromString[domain]
	switch d {
	case UnknownDomain:
		b.log.Warn("Unrecognised logger domain.", zap.String("domain", domain))
	case AllDomain:
		b.defaultLevel = level
	case InitDomain, CLIDomain, UpdateDomain, LockDomain, FileSystemDomain, GCSDomain, GitDomain, GitHubDomain, HTTPSDomain, S3Domain:
		b.domainLevels[d] = level
	default:
		panic(fmt.Sprintf("unexpected domain %q", d))
	}
	// Levels only apply to loggers that are created after the change.
	clear(b.cache)
}

func (b *Builder) Domain(domain Domain) *zap.Logger {
	if l, ok := b.cache[domain]; ok {
		return l
	}

	targetLevel := b.defaultLevel
	if lvl, ok := b.domainLevels[domain]; ok {
		targetLevel = lvl
	}
	l := b.log.Named(domain.String()).WithOptions(zap.IncreaseLevel(targetLevel))
	b.cache[domain] = l
	return l
}
