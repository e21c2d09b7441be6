package utils

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/mozillazg/go-pinyin"
	"github.com/rotadesk/rota/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var firstNames = []string{
	"Olivia", "Amelia", "Isla", "Ava", "Mia", "Grace", "Freya", "Lily", "Ella", "Sophie",
	"Oliver", "George", "Harry", "Noah", "Jack", "Leo", "Arthur", "Oscar", "Charlie", "Jacob",
}
var lastNames = []string{
	"Smith", "Jones", "Taylor", "Brown", "Williams", "Wilson", "Johnson", "Davies", "Patel", "Robinson",
	"Wright", "Thompson", "Evans", "Walker", "White", "Roberts", "Green", "Hall", "Wood", "Jackson",
}

// Positions are the job roles handed to generated staff and shifts.
var Positions = []string{"Bartender", "Server", "Chef", "Host", "Kitchen Porter"}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

func GenerateRandomEnglishName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

// GenerateRandomFullName mixes Han-character and Latin names, roughly one in four Han.
func GenerateRandomFullName() string {
	if rand.Intn(4) == 0 {
		return GenerateRandomChineseName()
	}
	return GenerateRandomEnglishName()
}

var roles = []domain.Role{
	domain.RoleStaff,
	domain.RoleStaff,
	domain.RoleStaff,
	domain.RoleManager,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func isHan(name string) bool {
	for _, r := range name {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// GenerateUsername derives a login name from a full name. Han-character names are
// spelled in pinyin first.
func GenerateUsername(fullName string) string {
	var parts []string
	if isHan(fullName) {
		parts = pinyin.LazyConvert(fullName, nil)
	} else {
		parts = strings.Fields(strings.ToLower(fullName))
	}

	username := ""
	for i, part := range parts {
		if i == 0 {
			username += part
			continue
		}
		length := rand.Intn(len(part)) + 1
		username += part[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomPositions picks one to three distinct positions.
func GenerateRandomPositions() []string {
	shuffled := append([]string{}, Positions...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:rand.Intn(3)+1]
}

func GenerateRandomUser(companyID, password, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomFullName()
	username := GenerateUsername(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := GenerateRandomRole()
	user := &domain.User{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         role,
		Positions:    []string{},
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if role == domain.RoleStaff {
		user.Positions = GenerateRandomPositions()
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

// shiftPatterns are common hospitality start hours and lengths.
var shiftPatterns = []struct {
	startHour int
	hours     int
}{
	{7, 8}, {9, 8}, {11, 6}, {12, 5}, {16, 7}, {17, 6}, {18, 8},
}

// GenerateRandomShifts builds n draft shifts spread over the seven days starting at
// weekStart. About a third are open; the rest go to a random member of staff who holds
// the shift's role. Locations may be empty.
func GenerateRandomShifts(companyID string, weekStart time.Time, n int, staff []*domain.User, locations []*domain.Location, newID func() string) []*domain.Shift {
	shifts := make([]*domain.Shift, 0, n)

	for i := 0; i < n; i++ {
		pattern := shiftPatterns[rand.Intn(len(shiftPatterns))]
		day := weekStart.AddDate(0, 0, rand.Intn(7))
		start := time.Date(day.Year(), day.Month(), day.Day(), pattern.startHour, 0, 0, 0, day.Location())

		shift := &domain.Shift{
			ID:        newID(),
			CompanyID: companyID,
			Role:      Positions[rand.Intn(len(Positions))],
			StartTime: start,
			EndTime:   start.Add(time.Duration(pattern.hours) * time.Hour),
			Status:    domain.ShiftStatusDraft,
			Bids:      []string{},
			CreatedAt: time.Now(),
		}

		if len(locations) > 0 {
			loc := locations[rand.Intn(len(locations))]
			shift.LocationID = domain.StringPtr(loc.ID)
			shift.LocationName = domain.StringPtr(loc.Name)
		}

		if rand.Intn(3) != 0 {
			var holders []*domain.User
			for _, u := range staff {
				for _, p := range u.Positions {
					if p == shift.Role {
						holders = append(holders, u)
						break
					}
				}
			}
			if len(holders) > 0 {
				u := holders[rand.Intn(len(holders))]
				shift.UserID = domain.StringPtr(u.ID)
				shift.UserName = domain.StringPtr(u.FullName)
			}
		}

		shifts = append(shifts, shift)
	}

	return shifts
}

var timeOffReasons = []string{"Holiday", "Medical appointment", "Family event", "Study leave"}

// GenerateRandomTimeOff gives a user one to three whole days off within the week.
func GenerateRandomTimeOff(user *domain.User, weekStart time.Time) *domain.TimeOffRequest {
	first := weekStart.AddDate(0, 0, rand.Intn(7))
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())

	statuses := []domain.TimeOffStatus{domain.TimeOffApproved, domain.TimeOffApproved, domain.TimeOffPending}
	return &domain.TimeOffRequest{
		ID:        uuid.NewString(),
		CompanyID: user.CompanyID,
		UserID:    user.ID,
		UserName:  user.FullName,
		StartTime: start,
		EndTime:   start.AddDate(0, 0, rand.Intn(3)+1),
		Reason:    timeOffReasons[rand.Intn(len(timeOffReasons))],
		Status:    statuses[rand.Intn(len(statuses))],
	}
}
