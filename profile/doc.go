// Package profile provides optional runtime profiling for ecalc.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o ecalc .
//
// Without the tag, [Modes] is empty and [Config.Start] returns a no-op.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Command line
//
//	# profile a batch of evaluations
//	ecalc --pprof-mode cpu eval --env env.yaml "IMPACT('CH4', :kg)"
//
//	# heap profile written to a custom directory
//	ecalc --pprof-mode heap --pprof-dir ./profiles repl
//
// The default output directory is the pprof directory inside the user cache
// directory, for example $XDG_CACHE_HOME/ecalc/pprof.
//
// # Analysis
//
//	go tool pprof ./ecalc ~/.cache/ecalc/pprof/cpu.pprof
//	go tool pprof -http=: ~/.cache/ecalc/pprof/cpu.pprof
//	go tool pprof -base=old.pprof new.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
