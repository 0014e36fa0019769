package util

import "errors"

var (
	ErrUserNotFound     = errors.New("utilisateur introuvable")
	ErrEmailRegistered  = errors.New("cet email est déjà enregistré")
	ErrPermissionDenied = errors.New("permission denied")
	ErrProgressNotFound = errors.New("progress not found")
)
