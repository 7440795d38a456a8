package handler

import (
	"net/http"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/service"
	"github.com/apedo/eglise-console/internal/view"

	"go.uber.org/zap"
)

// ============================================================
// Members Handlers
// ============================================================

func listMembersHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /members")
		defer span.End()

		members, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view.SearchMembers(members, r.URL.Query().Get("search")))
	}
}

func getMemberHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /members/{memberId}")
		defer span.End()

		id, ok := pathID(r, "memberId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid member id")
			return
		}
		member, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, member)
	}
}

func createMemberHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /members")
		defer span.End()

		var draft domain.MemberDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeBodyError(w, err)
			return
		}
		members, err := svc.Create(ctx, draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, members)
	}
}

func updateMemberHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /members/{memberId}")
		defer span.End()

		id, ok := pathID(r, "memberId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid member id")
			return
		}
		var draft domain.MemberDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeBodyError(w, err)
			return
		}
		members, err := svc.Update(ctx, id, draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}

func deleteMemberHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /members/{memberId}")
		defer span.End()

		id, ok := pathID(r, "memberId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid member id")
			return
		}
		members, err := svc.Remove(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}

func bulkDeleteMembersHandler(svc *service.MemberService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /members/bulk-delete")
		defer span.End()

		var ids []int64
		if err := decodeJSON(w, r, &ids); err != nil {
			writeBodyError(w, err)
			return
		}
		members, err := svc.BulkRemove(ctx, ids)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}
