package routes

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/victorjacobs/go-floureon/bridge"
)

func State(b *bridge.Bridge) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, b.States())
	}
}

func Device(b *bridge.Bridge) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		state, ok := b.State(ps.ByName("id"))
		if !ok {
			http.Error(w, "unknown device", http.StatusNotFound)
			return
		}

		writeJSON(w, state)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	marshaled, err := json.Marshal(v)
	if err != nil {
		log.Printf("error marshaling: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(marshaled)
}
