package contracts

// WindowState is the walk-forward cursor set.
//
//	[ISStart, ISStart+IS_n)   bars scored to pick a market per criterion
//	[OOS1Start, OOS1End)      each criterion's realized one-bar returns
//	[OOS2Start, OOS2End)      nested system's realized one-bar returns
type WindowState struct {
	ISStart   int `json:"is_start"`
	OOS1Start int `json:"oos1_start"`
	OOS1End   int `json:"oos1_end"`
	OOS2Start int `json:"oos2_start"`
	OOS2End   int `json:"oos2_end"`
}

// InitialWindow returns the state before the first step
func InitialWindow(isN, oos1N int) WindowState {
	return WindowState{
		ISStart:   0,
		OOS1Start: isN,
		OOS1End:   isN,
		OOS2Start: isN + oos1N,
		OOS2End:   isN + oos1N,
	}
}

// OOS1Filled returns how many OOS1 returns sit in the trailing window
func (w WindowState) OOS1Filled() int {
	return w.OOS1End - w.OOS1Start
}
