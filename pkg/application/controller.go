package application

import "github.com/gorilla/mux"

// Controller mounts a group of routes on the shared router.
type Controller interface {
	Register(r *mux.Router)
	Key() string
}
