package log

import (
	"io"
	"os"
	"sync"
)

const (
	timestampFormat = "02/01/2006 15:04:05"

	infoHeader  = "[INFO]"
	warnHeader  = "[WARN]"
	debugHeader = "[DEBUG]"
	errorHeader = "[ERROR]"
)

var (
	mu         sync.RWMutex
	output     io.Writer = os.Stdout
	subLoggers           = map[string]*SubLogger{}

	// Global is the catch-all sublogger
	Global *SubLogger

	// ExchangeSys is the sublogger for gateway-level operations
	ExchangeSys *SubLogger
	// RequestSys is the sublogger for outbound request retry handling
	RequestSys *SubLogger
	// MarketSys is the sublogger for market metadata and ticker caching
	MarketSys *SubLogger
	// CandleSys is the sublogger for candle and trade retrieval
	CandleSys *SubLogger
	// DryRunSys is the sublogger for simulated order handling
	DryRunSys *SubLogger
)

// SubLogger defines a per-subsystem logger with individual level gating
type SubLogger struct {
	name  string
	info  bool
	debug bool
	warn  bool
	err   bool
}

func init() {
	Global = NewSubLogger("LOG")
	ExchangeSys = NewSubLogger("EXCHANGE")
	RequestSys = NewSubLogger("REQUEST")
	MarketSys = NewSubLogger("MARKET")
	CandleSys = NewSubLogger("CANDLE")
	DryRunSys = NewSubLogger("DRYRUN")
}

// NewSubLogger registers a new sublogger with default levels. Registering an
// already held name returns the existing sublogger.
func NewSubLogger(name string) *SubLogger {
	mu.Lock()
	defer mu.Unlock()
	if sl, ok := subLoggers[name]; ok {
		return sl
	}
	sl := &SubLogger{
		name: name,
		info: true,
		warn: true,
		err:  true,
	}
	subLoggers[name] = sl
	return sl
}

// SetLevels adjusts level gating for a sublogger
func (sl *SubLogger) SetLevels(info, debug, warn, err bool) {
	mu.Lock()
	sl.info, sl.debug, sl.warn, sl.err = info, debug, warn, err
	mu.Unlock()
}

// SetOutput redirects all sublogger output to w
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}
