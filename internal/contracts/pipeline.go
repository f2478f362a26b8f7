package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그 필드에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4
//   Ingest  Align  WalkForward  Permutation  Significance

// Stage represents a study pipeline stage
type Stage string

const (
	// StageIngest S0: market files / database rows → validated OHLC bars
	// 위치: internal/marketdata/
	StageIngest Stage = "S0_INGEST"

	// StageAlign S1: common-date intersection, log transform
	// 위치: internal/marketdata/align.go
	StageAlign Stage = "S1_ALIGN"

	// StageWalkForward S2: nested market / criterion selection
	// 위치: internal/walkforward/
	StageWalkForward Stage = "S2_WALKFORWARD"

	// StagePermutation S3: correlation-preserving shuffles
	// 위치: internal/permutation/
	StagePermutation Stage = "S3_PERMUTATION"

	// StageSignificance S4: Monte-Carlo p-values
	// 위치: internal/significance/
	StageSignificance Stage = "S4_SIGNIFICANCE"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageIngest:
		return "S0"
	case StageAlign:
		return "S1"
	case StageWalkForward:
		return "S2"
	case StagePermutation:
		return "S3"
	case StageSignificance:
		return "S4"
	default:
		return "UNKNOWN"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageIngest,
		StageAlign,
		StageWalkForward,
		StagePermutation,
		StageSignificance,
	}
}
