package logic

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Greybash/ngo-service/internal/model"
)

const coverLetterPreviewLen = 100

var exportHeader = []string{
	"ID",
	"Name",
	"Email",
	"Phone",
	"Status",
	"Applied On",
	"Resume URL",
	"Resume Filename",
	"Cover Letter Preview",
}

// ExportFilename applications_<标题下划线>_<YYYYMMDD>.csv，标题中字母数字和 -._ 以外的字符替换为下划线
func ExportFilename(jobTitle string, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '.', r == '_':
			return r
		default:
			return '_'
		}
	}, jobTitle)
	return fmt.Sprintf("applications_%s_%s.csv", safe, now.Format("20060102"))
}

// ExportApplications 将岗位申请写成 CSV，返回下载文件名
func (j *JobLogic) ExportApplications(ctx context.Context, jobID int64, w io.Writer, now time.Time) (string, error) {
	list, err := j.ListApplications(ctx, jobID)
	if err != nil {
		return "", err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return "", err
	}

	for i := range list.Applications {
		if err := cw.Write(j.exportRow(&list.Applications[i])); err != nil {
			return "", err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("写入 CSV 失败: %w", err)
	}

	return ExportFilename(list.Job.Title, now), nil
}

func (j *JobLogic) exportRow(app *model.JobApplicationModel) []string {
	resumeURL, resumeName := "No resume uploaded", "N/A"
	if app.ResumeKey != "" {
		resumeURL = j.absoluteURL(app.ResumeURL)
		resumeName = path.Base(app.ResumeKey)
	}

	return []string{
		strconv.FormatInt(app.Id, 10),
		app.Name,
		app.Email,
		app.Phone,
		app.Status.Label(),
		app.CreatedAt.Format("2006-01-02 15:04:05"),
		resumeURL,
		resumeName,
		coverLetterPreview(app.CoverLetter),
	}
}

// absoluteURL 本地存储的地址是相对路径
func (j *JobLogic) absoluteURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") || j.baseURL == "" {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return j.baseURL + u
}

// coverLetterPreview 前 100 个字符，超出时加省略号
func coverLetterPreview(s string) string {
	r := []rune(s)
	if len(r) <= coverLetterPreviewLen {
		return s
	}
	return string(r[:coverLetterPreviewLen]) + "..."
}
