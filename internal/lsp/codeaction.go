package lsp

import (
	"encoding/json"

	"prosecheck/internal/fix"
	"prosecheck/internal/source"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if ok, err := s.decode(msg, &params); !ok {
		return err
	}
	actions := []codeAction{}
	doc := s.docs[canonicalURI(params.TextDocument.URI)]
	if doc == nil {
		return s.w.response(msg.ID, actions)
	}

	// Published ranges only describe the text they were computed for; after
	// an edit the editor's shifted copies in the context are the accurate ones.
	diags := fromLSPDiagnostics(params.Context.Diagnostics)
	if doc.applied == doc.stamp && len(doc.diags) > 0 {
		diags = doc.diags
	}
	candidates := fix.Correlate(source.NewDocument(doc.text), diags, fromLSPRange(params.Range))
	for _, c := range candidates {
		action := codeAction{
			Title:       c.Title,
			Kind:        kindQuickFix,
			Diagnostics: []lspDiagnostic{toLSPDiagnostic(diags[c.Diagnostic])},
		}
		switch c.Kind {
		case fix.KindReplace:
			action.Edit = &workspaceEdit{Changes: map[string][]textEdit{
				doc.uri: {{Range: toLSPRange(c.Edit.Range), NewText: c.Edit.NewText}},
			}}
		case fix.KindAddWord:
			action.Command = &command{
				Title:     c.Title,
				Command:   CommandAddWord,
				Arguments: []any{c.Word},
			}
		}
		actions = append(actions, action)
	}
	return s.w.response(msg.ID, actions)
}

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if ok, err := s.decode(msg, &params); !ok {
		return err
	}
	if params.Command != CommandAddWord {
		return s.w.error(msg.ID, codeInvalidParams, "unknown command "+params.Command)
	}
	var word string
	if len(params.Arguments) != 1 || json.Unmarshal(params.Arguments[0], &word) != nil || word == "" {
		return s.w.error(msg.ID, codeInvalidParams, CommandAddWord+" expects one word")
	}
	if s.dict == nil {
		return s.w.error(msg.ID, codeInternalError, "no dictionary configured")
	}

	ctx, dict, id := s.ctx, s.dict, msg.ID
	s.tasks.Go(func() error {
		err := dict.AddWord(ctx, word)
		s.post(addWordResult{id: id, word: word, err: err})
		return nil
	})
	return nil
}

func (s *Server) onAddWord(r addWordResult) error {
	if r.err != nil {
		s.log.Error("add word failed", "word", r.word, "err", r.err)
		return s.w.error(r.id, codeInternalError, r.err.Error())
	}
	s.log.Info("word added", "word", r.word)
	if err := s.cache.DropAll(); err != nil {
		s.log.Warn("failed to drop result cache", "err", err)
	}
	s.recheckAll()
	return s.w.response(r.id, nil)
}
