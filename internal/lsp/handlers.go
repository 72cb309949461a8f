package lsp

import (
	"encoding/json"
)

func (s *Server) handleMessage(msg *rpcMessage) error {
	if msg.Method == "" {
		// A response to a request we never send.
		return nil
	}
	if s.shutdownRequested && msg.Method != "exit" && msg.isRequest() {
		return s.w.error(msg.ID, codeInvalidRequest, "server is shutting down")
	}
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		s.shutdownRequested = true
		return s.w.response(msg.ID, nil)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	default:
		if msg.isRequest() {
			return s.w.error(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

// decode unmarshals params. For requests a failure is answered with
// InvalidParams; for notifications it is only logged.
func (s *Server) decode(msg *rpcMessage, v any) (ok bool, err error) {
	if err := json.Unmarshal(msg.Params, v); err != nil {
		s.log.Warn("invalid params", "method", msg.Method, "err", err)
		if msg.isRequest() {
			return false, s.w.error(msg.ID, codeInvalidParams, "invalid params")
		}
		return false, nil
	}
	return true, nil
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if ok, err := s.decode(msg, &params); !ok {
			return err
		}
	}
	s.log.Info("initialize", "root", uriToPath(params.RootURI))
	if err := s.applySettings(params.InitializationOptions); err != nil {
		s.log.Warn("ignoring initialization options", "err", err)
	}
	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    syncIncremental,
				Save:      saveOptions{IncludeText: true},
			},
			CodeActionProvider:     codeActionOptions{CodeActionKinds: []string{kindQuickFix}},
			ExecuteCommandProvider: executeCommandOptions{Commands: []string{CommandAddWord}},
		},
		ServerInfo: serverInfo{Name: "prosecheck", Version: s.version},
	}
	return s.w.response(msg.ID, result)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if ok, err := s.decode(msg, &params); !ok {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	if old := s.docs[uri]; old != nil && old.timer != nil {
		old.timer.Stop()
	}
	doc := &document{
		uri:     uri,
		text:    params.TextDocument.Text,
		version: params.TextDocument.Version,
	}
	s.docs[uri] = doc
	s.touch(doc)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if ok, err := s.decode(msg, &params); !ok {
		return err
	}
	doc := s.docs[canonicalURI(params.TextDocument.URI)]
	if doc == nil {
		s.log.Warn("change for unknown document", "uri", params.TextDocument.URI)
		return nil
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	s.touch(doc)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if ok, err := s.decode(msg, &params); !ok {
		return err
	}
	doc := s.docs[canonicalURI(params.TextDocument.URI)]
	if doc == nil || params.Text == nil || *params.Text == doc.text {
		return nil
	}
	doc.text = *params.Text
	s.touch(doc)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if ok, err := s.decode(msg, &params); !ok {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	doc := s.docs[uri]
	if doc == nil {
		return nil
	}
	if doc.timer != nil {
		doc.timer.Stop()
	}
	delete(s.docs, uri)
	if doc.applied == 0 {
		return nil
	}
	return s.clear(uri)
}
