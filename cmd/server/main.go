package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/adsp-prep/backend/internal/auth"
	"github.com/adsp-prep/backend/internal/database"
	"github.com/adsp-prep/backend/internal/exam"
	"github.com/adsp-prep/backend/internal/generator"
	"github.com/adsp-prep/backend/internal/middleware"
	"github.com/adsp-prep/backend/internal/quiz"
	"github.com/adsp-prep/backend/internal/topics"
	"github.com/adsp-prep/backend/internal/transcript"
)

func main() {
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Generation pipeline
	llm := generator.NewClient()
	gen := generator.NewGenerator(llm, maxInFlightFromEnv())

	// Stores and services
	quizStore := quiz.NewStore(db)
	topicStore := topics.NewStore(db)
	examStore := exam.NewStore(db)
	transcripts := transcript.NewFetcher(os.Getenv("TRANSCRIPT_LANG"))
	varier := quiz.NewVarier(time.Now().UnixNano())

	quizService := quiz.NewService(quizStore, topicStore, gen, transcripts, varier)
	examService := exam.NewService(quizStore, examStore)

	// Handlers
	authHandler := auth.NewHandler(db)
	topicHandler := topics.NewHandler(topicStore, transcripts)
	quizHandler := quiz.NewHandler(quizService)
	examHandler := exam.NewHandler(examService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	api.HandleFunc("/subjects", topicHandler.ListSubjects).Methods("GET")
	api.HandleFunc("/subjects/{id}/main-topics", topicHandler.ListMainTopics).Methods("GET")
	api.HandleFunc("/main-topics/{id}/sub-topics", topicHandler.ListSubTopics).Methods("GET")
	api.HandleFunc("/sub-topics/{id}/core-content", topicHandler.GetCoreContent).Methods("GET")

	api.HandleFunc("/quiz/study", quizHandler.GenerateStudyBatch).Methods("POST")
	api.HandleFunc("/quiz/study/next", quizHandler.GetNextQuestion).Methods("POST")
	api.HandleFunc("/quiz/generate", quizHandler.GenerateFromSource).Methods("POST")
	api.HandleFunc("/quiz", quizHandler.ListQuizzes).Methods("GET")
	api.HandleFunc("/quiz/{id:[0-9]+}", quizHandler.GetQuiz).Methods("GET")
	api.HandleFunc("/quiz/{id:[0-9]+}/validation", quizHandler.GetValidation).Methods("GET")

	api.HandleFunc("/exam/start", examHandler.Start).Methods("POST")
	api.HandleFunc("/exam/submit", examHandler.SubmitAnswer).Methods("POST")
	api.HandleFunc("/exam/{session_id}/result", examHandler.Result).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireAuth)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/sub-topics/{id}/core-content", topicHandler.UpdateCoreContent).Methods("PUT")
	protected.HandleFunc("/quiz/{id:[0-9]+}", quizHandler.UpdateQuiz).Methods("PUT")
	protected.HandleFunc("/quiz/{id:[0-9]+}/validate", quizHandler.ValidateQuiz).Methods("POST")
	protected.HandleFunc("/quiz/dashboard", quizHandler.Dashboard).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on :%s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func maxInFlightFromEnv() int64 {
	raw := os.Getenv("GENERATION_MAX_INFLIGHT")
	if raw == "" {
		return generator.DefaultMaxInFlight
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		log.Printf("[server] WARN: invalid GENERATION_MAX_INFLIGHT %q, using default", raw)
		return generator.DefaultMaxInFlight
	}
	return n
}
