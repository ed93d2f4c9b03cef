package handler_test

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/courier/internal/http/handler"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/service"
)

var _ = Describe("ThreadHandler", func() {
	var (
		router *gin.Engine
		svc    *mockThreadService
		now    time.Time
	)

	BeforeEach(func() {
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		router = newRouter()
		svc = &mockThreadService{}
		h := handler.NewThreadHandler(svc)
		router.POST("/threads", h.Create)
		router.GET("/threads/:threadId", h.Get)
		router.PUT("/threads/:threadId/state", h.SetState)
		router.POST("/threads/:threadId/participants", h.AddParticipant)
		router.GET("/inbox", h.Inbox)
	})

	Describe("Create", func() {
		It("creates the thread on behalf of the caller", func() {
			var got service.CreateThreadInput
			svc.createFn = func(_ context.Context, in service.CreateThreadInput) (*model.Thread, error) {
				got = in
				return &model.Thread{
					ID:              4242,
					ChannelType:     in.ChannelType,
					State:           model.ThreadStateActive,
					CreatedBy:       in.CreatedBy,
					RetentionPolicy: "standard",
					RetentionDays:   365,
					CreatedAt:       now,
					UpdatedAt:       now,
				}, nil
			}

			w := perform(router, http.MethodPost, "/threads",
				`{"channel_type":"direct","participant_ids":[20],"metadata":{"listingId":"L-1","color":"blue"}}`, "10")

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(got.CreatedBy).To(Equal(int64(10)))
			Expect(got.ChannelType).To(Equal(model.ChannelTypeDirect))
			Expect(got.ParticipantIDs).To(Equal([]int64{20}))
			Expect(*got.Metadata.ListingID).To(Equal("L-1"))
			Expect(got.Metadata.Extra).To(HaveKey("color"))

			resp := decode(w)
			Expect(resp["id"]).To(Equal("4242"))
			Expect(resp["created_by"]).To(Equal("10"))
		})

		It("returns 400 on invalid request body", func() {
			w := perform(router, http.MethodPost, "/threads", `{`, "10")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 when the service rejects the input", func() {
			svc.createFn = func(_ context.Context, _ service.CreateThreadInput) (*model.Thread, error) {
				return nil, &service.ValidationError{Field: "channelType", Msg: `unsupported channel type "fax"`}
			}

			w := perform(router, http.MethodPost, "/threads", `{"channel_type":"fax"}`, "10")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["error"]).To(ContainSubstring("fax"))
		})

		It("returns 401 without a caller identity", func() {
			w := perform(router, http.MethodPost, "/threads", `{"channel_type":"direct"}`, "")
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("hides unexpected failures behind a generic message", func() {
			svc.createFn = func(_ context.Context, _ service.CreateThreadInput) (*model.Thread, error) {
				return nil, &service.ApplicationError{Op: "create thread", Err: errors.New("connection reset")}
			}

			w := perform(router, http.MethodPost, "/threads", `{"channel_type":"direct"}`, "10")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("connection reset"))
		})
	})

	Describe("Get", func() {
		It("returns the thread with the caller's unread count", func() {
			svc.getFn = func(_ context.Context, threadID, userID int64) (*service.ThreadView, error) {
				Expect(threadID).To(Equal(int64(7)))
				Expect(userID).To(Equal(int64(20)))
				return &service.ThreadView{
					Thread: model.Thread{ID: 7, ChannelType: model.ChannelTypeDirect, State: model.ThreadStateActive},
					Participants: []model.Participant{
						{ThreadID: 7, UserID: 10, Role: model.ParticipantRoleOwner},
						{ThreadID: 7, UserID: 20, Role: model.ParticipantRoleParticipant},
					},
					Caller:      model.Participant{ThreadID: 7, UserID: 20, Role: model.ParticipantRoleParticipant},
					UnreadCount: 3,
				}, nil
			}

			w := perform(router, http.MethodGet, "/threads/7", "", "20")

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["unread_count"]).To(BeEquivalentTo(3))
			Expect(resp["role"]).To(Equal("participant"))
			Expect(resp["participants"]).To(HaveLen(2))
		})

		It("returns 400 on a malformed thread id", func() {
			w := perform(router, http.MethodGet, "/threads/abc", "", "20")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for a missing thread", func() {
			svc.getFn = func(_ context.Context, threadID, _ int64) (*service.ThreadView, error) {
				return nil, &service.NotFoundError{Entity: "thread", ID: threadID}
			}

			w := perform(router, http.MethodGet, "/threads/9", "", "20")

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 403 for a non-participant", func() {
			svc.getFn = func(_ context.Context, _, _ int64) (*service.ThreadView, error) {
				return nil, &service.AuthorizationError{Reason: "user 99 is not a participant"}
			}

			w := perform(router, http.MethodGet, "/threads/7", "", "99")

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Inbox", func() {
		It("normalizes the page before calling the service", func() {
			var got model.Page
			svc.listInboxFn = func(_ context.Context, _ int64, page model.Page) ([]model.InboxEntry, error) {
				got = page
				return []model.InboxEntry{{Thread: model.Thread{ID: 7}, Role: model.ParticipantRoleOwner, UnreadCount: 2}}, nil
			}

			w := perform(router, http.MethodGet, "/inbox?limit=1000&offset=5", "", "10")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(Equal(model.Page{Limit: model.MaxPageLimit, Offset: 5}))
			Expect(decode(w)["entries"]).To(HaveLen(1))
		})

		It("returns 400 on a non-numeric limit", func() {
			w := perform(router, http.MethodGet, "/inbox?limit=ten", "", "10")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("SetState", func() {
		It("passes the requested state through", func() {
			svc.setStateFn = func(_ context.Context, threadID, actorID int64, state model.ThreadState) (*model.Thread, error) {
				return &model.Thread{ID: threadID, State: state, CreatedBy: actorID}, nil
			}

			w := perform(router, http.MethodPut, "/threads/7/state", `{"state":"locked"}`, "10")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["state"]).To(Equal("locked"))
		})

		It("returns 400 without a state", func() {
			w := perform(router, http.MethodPut, "/threads/7/state", `{}`, "10")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("AddParticipant", func() {
		It("adds the user with the requested role", func() {
			svc.addParticipantFn = func(_ context.Context, threadID, actorID, userID int64, role model.ParticipantRole) (*model.Participant, error) {
				Expect(actorID).To(Equal(int64(10)))
				return &model.Participant{ThreadID: threadID, UserID: userID, Role: role, JoinedAt: now}, nil
			}

			w := perform(router, http.MethodPost, "/threads/7/participants", `{"user_id":30,"role":"support"}`, "10")

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["user_id"]).To(Equal("30"))
			Expect(resp["role"]).To(Equal("support"))
		})

		It("returns 403 when the thread is locked", func() {
			svc.addParticipantFn = func(_ context.Context, _, _, _ int64, _ model.ParticipantRole) (*model.Participant, error) {
				return nil, &service.AuthorizationError{Reason: "thread 7 is locked"}
			}

			w := perform(router, http.MethodPost, "/threads/7/participants", `{"user_id":30}`, "10")

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})
})
