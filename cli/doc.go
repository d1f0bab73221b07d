// Package cli contains the command line interface for demonstrate.
//
// # Usage
//
// The CLI compiles declarative suite files into Go test files:
//
//	demonstrate gen suite.demo > suite_test.go
//
// Suites can also be validated, formatted, or edited interactively:
//
//	demonstrate check suite.demo
//	demonstrate fmt json suite.demo
//	demonstrate repl suite.demo
//
// # Parser
//
// The package uses the lang package's streaming parser with both method-based
// and functional interfaces for efficient access to suite blocks:
//
// Method-based interface (recommended):
//   - [lang.NewStream]: Create a parser from an io.Reader
//   - [lang.NewStreamFromString]: Create a parser from a string
//   - [lang.Stream.GetBlock]: Retrieve a specific top-level block by name
//   - [lang.Stream.Blocks]: Iterate over all top-level blocks using iter.Seq
//   - [lang.Stream.Root]: Access the complete parsed tree
//
// Functional interface:
//   - [lang.GetBlockFrom]: Directly retrieve a block from an io.Reader
//   - [lang.BlocksFrom]: Get an iterator over blocks from an io.Reader
//
// Utility:
//   - [lang.ClearCache]: Clear all cached trees (useful for testing)
//
// The parser caches parsed trees by source content, ensuring identical content
// is parsed only once even when accessed from multiple goroutines.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o demonstrate .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/demonstrate/pprof)
//
// # Examples
//
//	# Debug logging while compiling a suite
//	demonstrate --log-level=debug gen suite.demo
//
//	# CPU profile of a large suite compile
//	demonstrate --pprof-mode=cpu gen suite.demo -o suite_test.go
package cli
