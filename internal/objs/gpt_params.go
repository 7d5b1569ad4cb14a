package objs

// GptParams are the native engine's init-time parameters. Equality of two
// GptParams values (per spec.md §4.1) determines whether the shared model
// context treats a request as requiring a reload.
type GptParams struct {
	Model     string `json:"model"`
	NCtx      int    `json:"n_ctx"`
	NParallel int    `json:"n_parallel"`
	NThreads  int    `json:"n_threads"`
	Seed      int64  `json:"seed"`
}

// Default context sizing applied when an alias leaves a field unset.
const (
	DefaultNCtx      = 2048
	DefaultNParallel = 1
	DefaultNThreads  = 4
	DefaultSeed      = int64(-1)
)

// Equal compares the fields that affect engine identity: model path,
// context window, parallelism, thread count and seed. Any other field a
// future version of GptParams gains must not participate in this
// comparison without updating the reload decision table in internal/engine.
func (p GptParams) Equal(other GptParams) bool {
	return p.Model == other.Model &&
		p.NCtx == other.NCtx &&
		p.NParallel == other.NParallel &&
		p.NThreads == other.NThreads &&
		p.Seed == other.Seed
}

// FromAlias builds the GptParams an alias requires for a resolved model
// file, applying context-param defaults for any unset field.
func FromAlias(a Alias, modelPath string) GptParams {
	p := GptParams{
		Model:     modelPath,
		NCtx:      DefaultNCtx,
		NParallel: DefaultNParallel,
		NThreads:  DefaultNThreads,
		Seed:      DefaultSeed,
	}
	if a.ContextParams.NCtx != nil {
		p.NCtx = *a.ContextParams.NCtx
	}
	if a.ContextParams.NParallel != nil {
		p.NParallel = *a.ContextParams.NParallel
	}
	if a.ContextParams.NThreads != nil {
		p.NThreads = *a.ContextParams.NThreads
	}
	return p
}
