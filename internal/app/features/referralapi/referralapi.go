// Package referralapi accepts public referral submissions.
//
// POST /api/referencias takes a multipart form with an optional résumé. The
// steps run in a fixed order: validate, upload the résumé, insert the
// referral, bump the vacancy counter and send notifications. Only the first
// three can fail the request. An uploaded résumé is removed again when the
// insert fails.
package referralapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	vacancystore "github.com/dalemusser/stratarefer/internal/app/store/vacancies"
	"github.com/dalemusser/stratarefer/internal/app/system/jsonutil"
	"github.com/dalemusser/stratarefer/internal/app/system/mailer"
	"github.com/dalemusser/stratarefer/internal/app/system/metrics"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// envelope is the extra room allowed for form fields on top of the résumé.
const envelope = 1 << 20

// User-facing messages.
const (
	msgCreated      = "Referencia enviada con éxito"
	msgInvalid      = "Revisa los campos marcados."
	msgTooLarge     = "El archivo es demasiado grande (máx. 5MB)."
	msgBadType      = "Formato de archivo no soportado. Usa PDF, DOC o DOCX."
	msgBadForm      = "No se pudo leer el formulario."
	msgNoVacancy    = "La vacante no existe."
	msgClosed       = "La vacante ya no acepta referencias."
	msgUploadFailed = "No se pudo subir el CV. Inténtalo de nuevo."
	msgSaveFailed   = "No se pudo guardar la referencia. Inténtalo de nuevo."
)

// ObjectStore is the part of the résumé storage used here.
type ObjectStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// VacancyStore looks up the target vacancy and bumps its counter.
type VacancyStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Vacancy, error)
	IncrementApplications(ctx context.Context, id primitive.ObjectID) error
}

// ReferralStore persists referrals.
type ReferralStore interface {
	Create(ctx context.Context, r models.Referral) (models.Referral, error)
}

// Mailer sends notification emails.
type Mailer interface {
	Enabled() bool
	FromName() string
	Send(email mailer.Email) error
}

// Config carries the notification settings.
type Config struct {
	// EmailAdmin receives a notice for every referral. Empty disables it.
	EmailAdmin string
	// BaseURL prefixes the admin link in the notice.
	BaseURL string
}

type Handler struct {
	vacancies VacancyStore
	referrals ReferralStore
	files     ObjectStore
	mail      Mailer
	cfg       Config
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
	now       func() time.Time
}

func NewHandler(vacancies VacancyStore, referrals ReferralStore, files ObjectStore, mail Mailer, cfg Config, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		vacancies: vacancies,
		referrals: referrals,
		files:     files,
		mail:      mail,
		cfg:       cfg,
		errLog:    errLog,
		logger:    logger,
		now:       time.Now,
	}
}

// Routes mounts the endpoint at /api/referencias.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.submit)
	return r
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxCVSize+envelope)
	if err := r.ParseMultipartForm(MaxCVSize + envelope); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			h.reject(w, r, "invalid", http.StatusBadRequest, msgTooLarge)
			return
		case errors.Is(err, http.ErrNotMultipart):
			if err := r.ParseForm(); err != nil {
				h.reject(w, r, "invalid", http.StatusBadRequest, msgBadForm)
				return
			}
		default:
			h.reject(w, r, "invalid", http.StatusBadRequest, msgBadForm)
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := readInput(r)
	if res := in.validate(); res.HasErrors() {
		metrics.RecordReferralSubmission("invalid")
		jsonutil.ValidationError(w, msgInvalid, res.Fields())
		return
	}
	vacanteID, _ := primitive.ObjectIDFromHex(in.VacanteID)

	vacancy, ok := h.loadVacancy(w, r, vacanteID)
	if !ok {
		return
	}

	ref := in.model(vacanteID)

	// Résumé, if one was attached.
	file, header, err := r.FormFile("cv")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		h.reject(w, r, "invalid", http.StatusBadRequest, msgBadForm)
		return
	default:
		defer file.Close()
	}
	if file != nil && header.Size > 0 {
		contentType, err := checkCV(file, header)
		switch {
		case errors.Is(err, errCVTooLarge):
			h.reject(w, r, "invalid", http.StatusBadRequest, msgTooLarge)
			return
		case errors.Is(err, errCVType):
			h.reject(w, r, "invalid", http.StatusBadRequest, msgBadType)
			return
		case err != nil:
			h.errLog.Log(r, "failed to read uploaded cv", err)
			h.reject(w, r, "error", http.StatusInternalServerError, msgUploadFailed)
			return
		}

		path := objectPath(in.VacanteID, h.now(), header.Filename)
		upCtx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.logger, "referralapi.PutCV")
		err = h.files.Put(upCtx, path, file, &storage.PutOptions{ContentType: contentType})
		cancel()
		if err != nil {
			h.errLog.Log(r, "failed to store cv", err)
			h.reject(w, r, "error", http.StatusInternalServerError, msgUploadFailed)
			return
		}

		url := h.files.URL(path)
		name := header.Filename
		size := header.Size
		ref.CVURL = &url
		ref.CVFilename = &name
		ref.CVSizeBytes = &size
		ref.CVStoragePath = path
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "referralapi.Create")
	defer cancel()

	created, err := h.referrals.Create(ctx, ref)
	if err != nil {
		h.errLog.Log(r, "failed to insert referral", err)
		if ref.CVStoragePath != "" {
			if derr := h.files.Delete(context.WithoutCancel(r.Context()), ref.CVStoragePath); derr != nil {
				h.errLog.Warn(r, "failed to remove orphaned cv", derr, zap.String("path", ref.CVStoragePath))
			}
		}
		h.reject(w, r, "error", http.StatusInternalServerError, msgSaveFailed)
		return
	}

	if err := h.vacancies.IncrementApplications(ctx, vacanteID); err != nil {
		h.errLog.Warn(r, "failed to increment vacancy applications", err, zap.String("vacante_id", in.VacanteID))
	}

	h.notify(r, created, vacancy)

	metrics.RecordReferralSubmission("created")
	h.logger.Info("referral created",
		zap.String("referral_id", created.ID.Hex()),
		zap.String("vacante_id", in.VacanteID),
		zap.Bool("cv", created.HasCV()))

	jsonutil.Created(w, msgCreated, created)
}

// loadVacancy resolves the target vacancy and rejects closed ones.
func (h *Handler) loadVacancy(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) (*models.Vacancy, bool) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "referralapi.GetVacancy")
	defer cancel()

	v, err := h.vacancies.Get(ctx, id)
	switch {
	case errors.Is(err, vacancystore.ErrNotFound):
		h.reject(w, r, "not_found", http.StatusNotFound, msgNoVacancy)
		return nil, false
	case err != nil:
		h.errLog.Log(r, "failed to load vacancy for referral", err)
		h.reject(w, r, "error", http.StatusInternalServerError, msgSaveFailed)
		return nil, false
	}
	if !v.IsOpen(h.now()) {
		h.reject(w, r, "invalid", http.StatusBadRequest, msgClosed)
		return nil, false
	}
	return v, true
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, result string, status int, msg string) {
	metrics.RecordReferralSubmission(result)
	jsonutil.Error(w, status, msg)
}

// notify sends the confirmation and admin notice. Failures are logged only.
func (h *Handler) notify(r *http.Request, ref models.Referral, v *models.Vacancy) {
	if h.mail == nil || !h.mail.Enabled() {
		h.logger.Debug("mail disabled, referral notifications skipped")
		return
	}
	appName := h.mail.FromName()

	err := h.mail.Send(withTo(mailer.ReferralConfirmationEmail(mailer.ReferralConfirmationData{
		AppName:         appName,
		ReferidorNombre: ref.ReferidorNombre,
		CandidatoNombre: ref.CandidatoNombre,
		TituloVacante:   v.TituloPuesto,
	}), ref.ReferidorEmail))
	metrics.RecordNotification("referral_confirmation", err)
	if err != nil {
		h.errLog.Warn(r, "referral confirmation not sent", err)
	}

	if h.cfg.EmailAdmin == "" {
		return
	}
	data := mailer.AdminReferralNoticeData{
		AppName:                    appName,
		ReferidorNombre:            ref.ReferidorNombre,
		ReferidorEmail:             ref.ReferidorEmail,
		CandidatoNombre:            ref.CandidatoNombre,
		CandidatoEmail:             ref.CandidatoEmail,
		TituloVacante:              v.TituloPuesto,
		VacanteID:                  ref.VacanteID.Hex(),
		JustificacionRecomendacion: ref.JustificacionRecomendacion,
	}
	if ref.HasCV() {
		data.CVURL = absolute(h.cfg.BaseURL, *ref.CVURL)
	}
	if h.cfg.BaseURL != "" {
		data.AdminURL = absolute(h.cfg.BaseURL, "/admin/vacantes/"+ref.VacanteID.Hex()+"/referidos")
	}
	err = h.mail.Send(withTo(mailer.AdminReferralNoticeEmail(data), h.cfg.EmailAdmin))
	metrics.RecordNotification("admin_notice", err)
	if err != nil {
		h.errLog.Warn(r, "admin referral notice not sent", err)
	}
}

func withTo(e mailer.Email, to string) mailer.Email {
	e.To = to
	return e
}

// absolute joins a site-relative path onto base. Absolute URLs pass through.
func absolute(base, path string) string {
	if base == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
