package config

type WorkerKeyStruct struct {
	ClosureQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ClosureQueue: "closure_queue",
}
