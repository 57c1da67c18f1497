package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard fields, HTTP.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// Standard fields, domain.

func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func Username(v string) zap.Field { return zap.String("username", v) }
func Provider(v string) zap.Field { return zap.String("provider", v) }
func Bucket(v string) zap.Field   { return zap.String("bucket", v) }

// Standard fields, system.

func Layer(v string) zap.Field                  { return zap.String("layer", v) }
func Op(v string) zap.Field                     { return zap.String("op", v) }
func Err(err error) zap.Field                   { return zap.Error(err) }
func Duration(v time.Duration) zap.Field        { return zap.Duration("duration", v) }
func String(key, v string) zap.Field            { return zap.String(key, v) }
func Int(key string, v int) zap.Field           { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field         { return zap.Bool(key, v) }
