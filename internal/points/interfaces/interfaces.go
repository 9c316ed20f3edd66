package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	Running() bool
	AwardPass()
	PruneHistory()
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}
