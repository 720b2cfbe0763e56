package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/attendance/api"
	"github.com/frahmantamala/attendance/cmd"
	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/storage"
	"github.com/frahmantamala/attendance/pkg/logger"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type envelope map[string]interface{}

type apiClient struct {
	router http.Handler
	token  string
}

func (c *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder, dst interface{}) {
	ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), dst)).To(Succeed(), rec.Body.String())
}

func errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(rec, &body)
	ExpectWithOffset(1, body.Success).To(BeFalse())
	return body.Error.Code
}

var _ = Describe("HTTP server", func() {
	var (
		ctx    context.Context
		db     *storage.DB
		cfg    internal.Config
		deps   *cmd.Dependencies
		client *apiClient
	)

	build := func() {
		now := time.Date(2024, 5, 15, 9, 0, 0, 0, clock.Location(clock.DefaultTimezone))
		deps = cmd.NewDependencies(&cfg, db, clock.Fixed(now), logger.Discard())
		client = &apiClient{router: deps.Router}
	}

	register := func(name, email string, teamID *int64) int64 {
		rec := client.do(http.MethodPost, "/api/auth/register", envelope{
			"name": name, "email": email, "password": "secret", "team_id": teamID,
		})
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		var resp struct {
			UserID int64 `json:"user_id"`
		}
		decode(rec, &resp)
		return resp.UserID
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = storage.OpenMemory(ctx)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		cfg = internal.DefaultConfig()
		cfg.Security.BCryptCost = 4
		build()
	})

	Describe("operational endpoints", func() {
		It("reports the database as healthy", func() {
			rec := client.do(http.MethodGet, "/health", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("sqlite"))

			Expect(client.do(http.MethodGet, "/ping", nil).Code).To(Equal(http.StatusOK))
		})

		It("serves the OpenAPI document", func() {
			rec := client.do(http.MethodGet, "/openapi.yml", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/yaml"))
			Expect(rec.Body.Bytes()).To(Equal(api.Document()))
		})

		It("documents every mounted route", func() {
			doc, err := api.Load(ctx)
			Expect(err).NotTo(HaveOccurred())

			var routes []string
			err = chi.Walk(deps.Router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
				if strings.HasPrefix(route, "/swagger") || route == "/openapi.yml" {
					return nil
				}
				routes = append(routes, method+" "+route)
				item := doc.Paths.Find(route)
				if item == nil {
					return fmt.Errorf("%s is not documented", route)
				}
				if item.GetOperation(method) == nil {
					return fmt.Errorf("%s %s is not documented", method, route)
				}
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(routes).To(ContainElements(
				"POST /api/attendance/clock-in",
				"GET /api/admin/hours/export",
				"GET /health",
			))
		})

		It("echoes the trace id header", func() {
			rec := client.do(http.MethodGet, "/ping", nil)
			Expect(rec.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
		})
	})

	Describe("a working day", func() {
		It("registers, logs in, clocks in and shows up on the team board", func() {
			rec := client.do(http.MethodPost, "/api/teams", envelope{"name": "개발팀"})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			var created struct {
				TeamID int64 `json:"team_id"`
			}
			decode(rec, &created)

			userID := register("Alice", "Alice@Example.com", &created.TeamID)

			rec = client.do(http.MethodPost, "/api/auth/login", envelope{"email": "alice@example.com", "password": "secret"})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			var login struct {
				User struct {
					ID                   int64   `json:"id"`
					TeamName             *string `json:"team_name"`
					AnnualLeaveRemaining float64 `json:"annual_leave_remaining"`
				} `json:"user"`
				AccessToken string `json:"access_token"`
			}
			decode(rec, &login)
			Expect(login.User.ID).To(Equal(userID))
			Expect(login.User.TeamName).To(HaveValue(Equal("개발팀")))
			Expect(login.AccessToken).NotTo(BeEmpty())
			client.token = login.AccessToken

			center := deps.Settings.Get()
			rec = client.do(http.MethodPost, "/api/attendance/clock-in", envelope{
				"user_id": userID, "latitude": center.Latitude, "longitude": center.Longitude,
			})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			var clockIn struct {
				ClockIn string `json:"clock_in"`
			}
			decode(rec, &clockIn)
			Expect(clockIn.ClockIn).To(Equal("09:00"))

			rec = client.do(http.MethodPost, "/api/attendance/clock-in", envelope{
				"user_id": userID, "latitude": center.Latitude, "longitude": center.Longitude,
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeAlreadyClockedIn)))

			rec = client.do(http.MethodGet, fmt.Sprintf("/api/attendance/today/%d", userID), nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var today struct {
				IsWorking bool `json:"is_working"`
			}
			decode(rec, &today)
			Expect(today.IsWorking).To(BeTrue())

			rec = client.do(http.MethodGet, fmt.Sprintf("/api/team/status/%d", created.TeamID), nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			var board []struct {
				Name       string `json:"name"`
				StatusCode string `json:"status_code"`
				PlannedIn  string `json:"planned_in"`
			}
			decode(rec, &board)
			Expect(board).To(HaveLen(1))
			Expect(board[0].Name).To(Equal("Alice"))
			Expect(board[0].StatusCode).To(Equal("working"))
			Expect(board[0].PlannedIn).To(Equal("08:00"))

			rec = client.do(http.MethodPost, "/api/attendance/clock-out", envelope{"user_id": userID})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		})

		It("rejects a clock-in far from the office", func() {
			userID := register("Bob", "bob@example.com", nil)

			rec := client.do(http.MethodPost, "/api/attendance/clock-in", envelope{
				"user_id": userID, "latitude": 37.5665, "longitude": 126.9780,
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeOutsideGeofence)))
		})

		It("rejects a wrong password with 401", func() {
			register("Carol", "carol@example.com", nil)

			rec := client.do(http.MethodPost, "/api/auth/login", envelope{"email": "carol@example.com", "password": "nope"})
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInvalidCredentials)))
		})
	})

	Describe("leave", func() {
		It("deducts on request and refunds on cancel", func() {
			userID := register("Dana", "dana@example.com", nil)

			rec := client.do(http.MethodPost, "/api/leave", envelope{"user_id": userID, "date": "2024-05-16", "type": "annual"})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			var booked struct {
				LeaveID   int64   `json:"leave_id"`
				Remaining float64 `json:"remaining"`
			}
			decode(rec, &booked)
			Expect(booked.Remaining).To(Equal(14.0))

			rec = client.do(http.MethodPost, "/api/leave", envelope{"user_id": userID, "date": "2024-05-16", "type": "half_am"})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeLeaveDateTaken)))

			rec = client.do(http.MethodGet, fmt.Sprintf("/api/leave/user-week/%d", userID), nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var week []struct {
				Date string  `json:"date"`
				Type *string `json:"type"`
			}
			decode(rec, &week)
			Expect(week).To(HaveLen(5))
			Expect(week[3].Date).To(Equal("2024-05-16"))
			Expect(week[3].Type).To(HaveValue(Equal("annual")))

			rec = client.do(http.MethodDelete, fmt.Sprintf("/api/leave/%d", booked.LeaveID), nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

			rec = client.do(http.MethodGet, fmt.Sprintf("/api/auth/user/%d", userID), nil)
			var u struct {
				AnnualLeaveUsed float64 `json:"annual_leave_used"`
			}
			decode(rec, &u)
			Expect(u.AnnualLeaveUsed).To(Equal(0.0))
		})
	})

	Describe("team administration", func() {
		It("refuses to delete a team that still has members", func() {
			rec := client.do(http.MethodPost, "/api/teams", envelope{"name": "기획팀"})
			var created struct {
				TeamID int64 `json:"team_id"`
			}
			decode(rec, &created)
			userID := register("Eve", "eve@example.com", &created.TeamID)

			rec = client.do(http.MethodDelete, fmt.Sprintf("/api/teams/%d", created.TeamID), nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeTeamNotEmpty)))

			rec = client.do(http.MethodPut, "/api/user/team", envelope{"user_id": userID, "team_id": nil})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

			rec = client.do(http.MethodDelete, fmt.Sprintf("/api/teams/%d", created.TeamID), nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

			rec = client.do(http.MethodDelete, fmt.Sprintf("/api/teams/%d", created.TeamID), nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("exports the hours rollup as a workbook", func() {
			register("Frank", "frank@example.com", nil)

			rec := client.do(http.MethodGet, "/api/admin/hours/export?period=month", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Disposition")).To(ContainSubstring("hours-month.xlsx"))
			Expect(rec.Body.Len()).To(BeNumerically(">", 0))

			rec = client.do(http.MethodGet, "/api/admin/hours?period=year", nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInvalidPeriod)))
		})
	})

	Describe("with admin enforcement", func() {
		BeforeEach(func() {
			cfg.Security.EnforceAdmin = true
			build()
		})

		It("guards administrator routes", func() {
			rec := client.do(http.MethodGet, "/api/admin/employees", nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))

			register("Grace", "grace@example.com", nil)
			rec = client.do(http.MethodPost, "/api/auth/login", envelope{"email": "grace@example.com", "password": "secret"})
			var member struct {
				AccessToken string `json:"access_token"`
			}
			decode(rec, &member)
			client.token = member.AccessToken
			Expect(client.do(http.MethodGet, "/api/admin/employees", nil).Code).To(Equal(http.StatusForbidden))

			created, err := deps.Users.EnsureAdmin(ctx, "관리자", "admin@jbuh.kr")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			client.token = ""
			rec = client.do(http.MethodPost, "/api/auth/login", envelope{"email": "admin@jbuh.kr", "password": cfg.Security.DefaultPassword})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			var admin struct {
				AccessToken string `json:"access_token"`
			}
			decode(rec, &admin)
			client.token = admin.AccessToken

			rec = client.do(http.MethodGet, "/api/admin/employees", nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			var employees []struct {
				Role string `json:"role"`
			}
			decode(rec, &employees)
			Expect(employees).To(HaveLen(2))
		})

		It("rejects a tampered token", func() {
			client.token = "not-a-jwt"
			rec := client.do(http.MethodGet, "/api/teams", nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
