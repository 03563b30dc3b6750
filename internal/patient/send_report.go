package patient

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/terraincognita07/vocalis/internal/peer"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

func (handler *Handler) ShowSendReport(c *fiber.Ctx) error {
	doctorID := c.Query("doctor_id")
	data := fiber.Map{"Title": "Send report", "DoctorID": doctorID}

	doctor, found := lo.Find(handler.directory.Doctors(c.UserContext()), func(doctor peer.Doctor) bool {
		return strconv.FormatUint(uint64(doctor.ID), 10) == doctorID
	})
	if found {
		data["Doctor"] = doctor
	}
	return handler.renderer.Render(c, "send_report", data)
}

// SendReport forwards the patient's own voice report to the chosen doctor.
func (handler *Handler) SendReport(c *fiber.Ctx) error {
	doctorID := c.FormValue("doctor_id")
	content, header, err := web.ReadFormFile(c, "report")
	if err != nil {
		message := err.Error()
		if errors.Is(err, web.ErrMissingFile) {
			message = "report file is required"
		}
		handler.cookies.SetFlash(c, web.Flash{Error: message})
		return c.Redirect("/send-report?doctor_id="+url.QueryEscape(doctorID), fiber.StatusSeeOther)
	}

	err = handler.directory.UploadToDoctor(c.UserContext(), *currentPatient(c), doctorID, header.Filename, content)
	if err != nil {
		if web.StatusFor(err) == fiber.StatusInternalServerError {
			web.Logger(c).Error().Err(err).Msg("send report to doctor failed")
		}
		handler.cookies.SetFlash(c, web.Flash{Error: services.Message(err, "failed to send the report to the doctor")})
		return c.Redirect("/send-report?doctor_id="+url.QueryEscape(doctorID), fiber.StatusSeeOther)
	}

	handler.cookies.SetFlash(c, web.Flash{Success: "Report sent to the doctor."})
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}
