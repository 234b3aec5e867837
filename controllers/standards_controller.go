package controllers

import (
	"os"

	"loanbackend/services"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StandardsControllerI interface {
	ValidateStandards(ctx *gin.Context)
}

type standardsController struct{}

var StandardsController StandardsControllerI = &standardsController{}

// ValidateStandards dry-runs an uploaded standards workbook against the
// schema invariants and returns the parsed table with any problems found.
// The live table is never touched; the workbook is archived to Cloudinary
// when configured.
func (s *standardsController) ValidateStandards(ctx *gin.Context) {
	span := sentry.StartSpan(ctx.Request.Context(), "[GIN] ValidateStandards", sentry.WithTransactionName("ValidateStandards"))
	defer span.Finish()

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		span.Status = sentry.SpanStatusFailedPrecondition
		ctx.JSON(400, gin.H{"error": "No workbook found in form field 'file'"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		span.Status = sentry.SpanStatusFailedPrecondition
		sentry.CaptureException(err)
		ctx.JSON(500, gin.H{"error": "Error opening uploaded workbook"})
		return
	}
	defer src.Close()

	if os.Getenv("CLOUDINARY_URL") != "" {
		archiveSpan := sentry.StartSpan(span.Context(), "[DB] Archive standards workbook")
		cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
		if err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error initializing Cloudinary", zap.Error(err))
		} else {
			archiveName := uuid.New().String() + ".xlsx"
			uploadResult, err := cld.Upload.Upload(ctx, src, uploader.UploadParams{
				PublicID: archiveName,
				Folder:   "standards_uploads",
			})
			if err != nil {
				sentry.CaptureException(err)
				zap.L().Error("Error archiving workbook to Cloudinary", zap.Error(err))
			} else {
				zap.L().Info("Workbook archived", zap.String("url", uploadResult.SecureURL))
			}
			if _, err := src.Seek(0, 0); err != nil {
				sentry.CaptureException(err)
				ctx.JSON(500, gin.H{"error": "Error rewinding uploaded workbook"})
				return
			}
		}
		archiveSpan.Finish()
	}

	table, err := services.ParseStandardsReader(src)
	if err != nil {
		span.Status = sentry.SpanStatusFailedPrecondition
		zap.L().Error("Error parsing standards workbook", zap.String("filename", fileHeader.Filename), zap.Error(err))
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}

	problems := services.ValidateStandards(table)
	span.Status = sentry.SpanStatusOK
	ctx.JSON(200, gin.H{
		"banks":    table,
		"problems": problems,
		"valid":    len(problems) == 0,
	})
}
