package clinician

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/peer"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

// ReceiveReport accepts a report the patient service forwards to a doctor.
func (handler *Handler) ReceiveReport(c *fiber.Ctx) error {
	content, _, err := web.ReadFormFile(c, "report")
	if err != nil {
		if errors.Is(err, web.ErrMissingFile) {
			return web.APIError(c, fiber.StatusBadRequest, "report file is required")
		}
		return web.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	_, err = handler.intake.Receive(c.UserContext(), services.IncomingReport{
		DoctorID:    c.FormValue("doctor_id"),
		PatientName: c.FormValue("patient_name"),
		Date:        c.FormValue("date"),
		Report:      content,
	})
	if err != nil {
		return web.RespondError(c, err, "failed to store the report")
	}
	return c.JSON(fiber.Map{"message": "Report received successfully"})
}

func toPeerDoctor(doctor models.Doctor, _ int) peer.Doctor {
	return peer.Doctor{
		ID:            doctor.ID,
		Username:      doctor.Username,
		Name:          doctor.Name,
		Email:         doctor.Email,
		Qualification: doctor.Qualification,
		Position:      doctor.Position,
	}
}

// ListDoctors publishes the doctor directory without credentials or pictures.
func (handler *Handler) ListDoctors(c *fiber.Ctx) error {
	doctors, err := handler.accounts.Directory()
	if err != nil {
		return web.RespondError(c, err, "failed to load doctors")
	}
	return c.JSON(lo.Map(doctors, toPeerDoctor))
}
