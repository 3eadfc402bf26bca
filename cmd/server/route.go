package main

import (
	"github.com/zucenko/tablemaze/server"
)

func (s *Server) routes() {
	api := server.NewAPI(s.Machine, s.Hub, nil)
	if s.Store != nil {
		api.Results = s.Store
	}
	s.router = api.Routes()
}
