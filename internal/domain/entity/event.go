package entity

// DefectScanned событие: дефект только что сфотографирован
type DefectScanned struct {
	SessionID string
	Defect    *Defect
}
