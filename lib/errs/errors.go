package errs

import "github.com/pkg/errors"

// Бизнес-ошибки процесса согласования. Возвращаются как обычные значения и
// транслируются контроллерами в HTTP-статусы; фатальны только ошибки
// инфраструктуры (недоступная БД и т.п.).
var (
	// валидация
	ErrEmployeeNotFound    = errors.New("сотрудник не найден")
	ErrRequestNotFound     = errors.New("заявка не найдена")
	ErrNoLedger            = errors.New("для сотрудника не заведён баланс отпускных дней")
	ErrInsufficientBalance = errors.New("недостаточно доступных дней отпуска")

	// авторизация
	ErrNotAuthorized = errors.New("операция недоступна для текущего пользователя")
	ErrNotApprover   = errors.New("пользователь не входит в панель согласующих заявки")

	// конфликты — заявка уже ушла дальше, вызывающему нужно перечитать состояние
	ErrAlreadyDecided = errors.New("решение по заявке уже зафиксировано")
	ErrNotDecided     = errors.New("решение ещё не было зафиксировано")
	ErrNotPending     = errors.New("заявка уже не находится в ожидании")

	// окно корректировки решения истекло
	ErrAmendWindowExpired = errors.New("срок корректировки решения истёк")

	// целостность
	ErrNoPanel          = errors.New("нет активных назначенных согласующих")
	ErrDuplicateBooking = errors.New("автозаявка для этого окна уже существует")
)
