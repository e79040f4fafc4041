package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/pdfchat/internal/vault"
)

func (s *Server) handleKeyStatus(w http.ResponseWriter, r *http.Request) {
	_, found, err := s.store.Credential()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"present": found})
}

type storeKeyRequest struct {
	APIKey   string `json:"api_key" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) handleStoreKey(w http.ResponseWriter, r *http.Request) {
	var req storeKeyRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	blob, err := s.vault.Encrypt(req.APIKey, req.Password)
	if err != nil {
		s.log.Error("encrypting credential failed", "error", err)
		jsonError(w, "could not store credential", http.StatusInternalServerError)
		return
	}
	if err := s.store.SaveCredential(blob); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type unlockKeyRequest struct {
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleUnlockKey(w http.ResponseWriter, r *http.Request) {
	var req unlockKeyRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	blob, found, err := s.store.Credential()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		jsonError(w, "no stored credential", http.StatusNotFound)
		return
	}

	apiKey, err := s.vault.Decrypt(blob, req.Password)
	if err != nil {
		// Wrong password and tampered blob intentionally read the same.
		if errors.Is(err, vault.ErrDecryption) {
			jsonError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"api_key": apiKey})
}

func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCredential(); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
