package routes

import (
	"errors"
	"net/http"

	"github.com/wkalt/msgdef/util/httputil"
	"github.com/wkalt/msgdef/util/log"
	"github.com/wkalt/msgdef/util/ros1msg"
)

// EncodeRequest is the body of an encode request.
type EncodeRequest struct {
	Definitions ros1msg.Sequence `json:"definitions"`
}

// EncodeResponse is the body of an encode response.
type EncodeResponse struct {
	Text string `json:"text"`
}

// DecodeRequest is the body of a decode request. Lenient requests accept
// human-authored text with comments and loose spacing.
type DecodeRequest struct {
	Text    string `json:"text"`
	Lenient bool   `json:"lenient"`
}

// DecodeResponse is the body of a decode response.
type DecodeResponse struct {
	Definitions ros1msg.Sequence `json:"definitions"`
}

// MD5SumRequest is the body of an md5sum request.
type MD5SumRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func (req MD5SumRequest) validate() error {
	if req.Name == "" {
		return errors.New("missing name")
	}
	return nil
}

// MD5SumResponse is the body of an md5sum response.
type MD5SumResponse struct {
	Name   string `json:"name"`
	MD5Sum string `json:"md5sum"`
}

func newEncodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req := EncodeRequest{}
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(ctx, w, "failed to decode request: %s", err)
			return
		}
		log.Debugw(ctx, "encode request", "definitions", len(req.Definitions))
		text, err := ros1msg.Encode(req.Definitions)
		if err != nil {
			writeDefinitionError(w, r, "failed to encode definitions", err)
			return
		}
		httputil.WriteJSON(ctx, w, http.StatusOK, EncodeResponse{Text: text})
	}
}

func newDecodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req := DecodeRequest{}
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(ctx, w, "failed to decode request: %s", err)
			return
		}
		log.Debugw(ctx, "decode request", "bytes", len(req.Text), "lenient", req.Lenient)
		var seq ros1msg.Sequence
		var err error
		if req.Lenient {
			seq, err = ros1msg.ParseMessageDefinition([]byte(req.Text))
		} else {
			seq, err = ros1msg.Decode(req.Text)
		}
		if err != nil {
			writeDefinitionError(w, r, "failed to decode text", err)
			return
		}
		httputil.WriteJSON(ctx, w, http.StatusOK, DecodeResponse{Definitions: seq})
	}
}

func newMD5SumHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req := MD5SumRequest{}
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(ctx, w, "failed to decode request: %s", err)
			return
		}
		if err := req.validate(); err != nil {
			httputil.BadRequest(ctx, w, "invalid request: %s", err)
			return
		}
		seq, err := ros1msg.Decode(req.Text)
		if err != nil {
			writeDefinitionError(w, r, "failed to decode text", err)
			return
		}
		sum, err := ros1msg.MD5Sum(req.Name, seq)
		if err != nil {
			writeDefinitionError(w, r, "failed to compute md5sum", err)
			return
		}
		httputil.WriteJSON(ctx, w, http.StatusOK, MD5SumResponse{Name: req.Name, MD5Sum: sum})
	}
}
