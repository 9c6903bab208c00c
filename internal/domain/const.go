package domain

const (
	RequesterCtxKey   = "vr-requester"
	RequesterIdCtxKey = "vr-requesterId"
)
