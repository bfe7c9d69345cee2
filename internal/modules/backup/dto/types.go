package dto

type SnapshotOutput struct {
	Path       string
	Activities int
	Sessions   int
}
