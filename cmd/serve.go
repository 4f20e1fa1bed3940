package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/midifile/constants"
	"github.com/jsphweid/midifile/logger"
	"github.com/jsphweid/midifile/midi"
	"github.com/jsphweid/midifile/model"
	"github.com/jsphweid/midifile/smferr"
	"github.com/jsphweid/midifile/timing"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var port string

func init() {
	serveCmd.Flags().StringVar(&port, "port", constants.GetPort(), "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the decoder over HTTP",
	Long:  `Serves POST /decode, which takes a raw MIDI file as the request body and answers with the decoded document as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

type ctxKey int

const requestIdKey ctxKey = 0

func requestId(r *http.Request) string {
	id, _ := r.Context().Value(requestIdKey).(string)
	return id
}

func withRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		logger.GetLogger().Debug("Request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIdKey, id)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	res := model.ErrorResponse{Error: err.Error()}
	var e *smferr.Error
	if errors.As(err, &e) {
		res.Kind = e.Kind.String()
		offset := e.Offset
		res.Offset = &offset
	}
	writeJSON(w, status, res)
}

func newDecodeResponse(id string, doc *model.Document) model.DecodeResponse {
	res := model.DecodeResponse{
		RequestId:    id,
		FormatType:   uint16(doc.FormatType),
		TicksPerBeat: doc.TicksPerBeat,
		DurationMs:   timing.Duration(doc).Milliseconds(),
		Tracks:       make([]model.TrackResponse, 0, len(doc.Tracks)),
	}
	for _, track := range doc.Tracks {
		ticks := track.AbsoluteTicks()
		events := make([]model.EventResponse, 0, len(track))
		for i, te := range track {
			er := model.EventResponse{
				DeltaTime: te.DeltaTime,
				Tick:      ticks[i],
				Type:      te.Event.Family().String(),
				Subtype:   eventSubtype(te.Event),
				Params:    eventParams(te.Event),
			}
			if ce, ok := te.Event.(*model.ChannelEvent); ok {
				ch := ce.Channel
				er.Channel = &ch
			}
			events = append(events, er)
		}
		res.Tracks = append(res.Tracks, model.TrackResponse{Events: events})
	}
	return res
}

func HandleDecode(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger()
	id := requestId(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.GetMaxUploadBytes()))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, errors.Wrap(err, "Could not read request body"))
			return
		}
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "Could not read request body"))
		return
	}

	doc, err := midi.Decode(body)
	if err != nil {
		log.Info("Rejected midi file", "id", id, "bytes", len(body), "err", err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	log.Info("Decoded midi file", "id", id, "bytes", len(body), "tracks", len(doc.Tracks))
	writeJSON(w, http.StatusOK, newDecodeResponse(id, doc))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(withRequestId)
	router.HandleFunc("/decode", HandleDecode).Methods("POST")
	router.HandleFunc("/health", handleHealth).Methods("GET")
	return cors.Default().Handler(router)
}

func serve() error {
	addr := ":" + port
	logger.GetLogger().Info("Listening", "addr", addr)
	return http.ListenAndServe(addr, Router())
}
