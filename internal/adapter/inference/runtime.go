package inference

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// runtimeEnv is the process-wide ONNX Runtime environment
var runtimeEnv struct {
	once sync.Once
	err  error
}

// initRuntime loads the ONNX Runtime shared library. Only the first call has
// any effect; later calls return the first outcome.
func initRuntime(libPath string) error {
	runtimeEnv.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			runtimeEnv.err = fmt.Errorf("initialize onnx runtime: %w", err)
		}
	})
	return runtimeEnv.err
}

// ShutdownRuntime releases the ONNX Runtime environment. Call once, after
// every classifier has been closed.
func ShutdownRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}
