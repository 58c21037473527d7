package config

type WorkerKeyStruct struct {
	PersistDraftsQueue     string
	PersistViolationsQueue string
	RecomputeRekapQueue    string
}

var WorkerKey = &WorkerKeyStruct{
	PersistDraftsQueue:     "persist_drafts_queue",
	PersistViolationsQueue: "persist_violations_queue",
	RecomputeRekapQueue:    "recompute_rekap_queue",
}
