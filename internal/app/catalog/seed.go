// Package catalog seeds and serves the lesson curriculum. Seeding is
// upsert-only: re-running it refreshes the starter content without ever
// deleting lessons an admin has added.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

// lessonsPerLevel is the floor the seeder tops every course up to.
const lessonsPerLevel = 10

// Word is one vocabulary entry inside lesson content.
type Word struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Example     string `json:"example"`
}

// Theory is the explanation block of a lesson.
type Theory struct {
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
}

// Practice is one multiple-choice exercise.
type Practice struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  string   `json:"correct"`
}

// Content is the JSON payload stored on a lesson.
type Content struct {
	Words    []Word     `json:"words"`
	Theory   Theory     `json:"theory"`
	Practice []Practice `json:"practice"`
}

type seedLesson struct {
	Title   string
	Type    domain.LessonType
	Content Content
}

// Seed upserts the starter curriculum: one course per level, one main
// module each, topped up to ten lessons.
func Seed(db *sqlite.DB, now time.Time) error {
	for _, level := range domain.Levels {
		slug := levelSlug(level)
		courseID := slug + "-course"
		moduleID := slug + "-module-1"

		course := domain.Course{
			ID:          courseID,
			Level:       level,
			Title:       "English " + string(level),
			Description: levelDescriptions[level],
		}
		if err := db.UpsertCourse(course); err != nil {
			return fmt.Errorf("seed course %s: %w", courseID, err)
		}
		module := domain.CourseModule{
			ID:       moduleID,
			CourseID: courseID,
			Title:    "Main Curriculum: " + string(level),
		}
		if err := db.UpsertModule(module, 1); err != nil {
			return fmt.Errorf("seed module %s: %w", moduleID, err)
		}

		authored := starterCurriculum[level]
		for i := 0; i < lessonsPerLevel; i++ {
			var l seedLesson
			if i < len(authored) {
				l = authored[i]
			} else {
				l = seedLesson{
					Title: fmt.Sprintf("%s Advanced Prep %d", level, i+1),
					Type:  domain.LessonVocabulary,
				}
			}
			fillContent(&l.Content, i)

			raw, err := json.Marshal(l.Content)
			if err != nil {
				return fmt.Errorf("seed lesson content: %w", err)
			}
			lesson := domain.Lesson{
				ID:        fmt.Sprintf("%s-l%d", slug, i+1),
				ModuleID:  moduleID,
				Title:     fmt.Sprintf("%d. %s", i+1, l.Title),
				Type:      l.Type,
				Content:   raw,
				CreatedAt: now,
			}
			if err := db.UpsertLesson(lesson); err != nil {
				return fmt.Errorf("seed lesson %s: %w", lesson.ID, err)
			}
		}
	}
	return nil
}

func levelSlug(l domain.Level) string {
	return strings.ToLower(string(l))
}

// fillContent tops a lesson up to ten words and three exercises so a
// sparse authored lesson is still playable.
func fillContent(c *Content, index int) {
	for len(c.Words) < 10 {
		c.Words = append(c.Words, fallbackWords[(index*10+len(c.Words))%len(fallbackWords)])
	}
	if c.Theory.Explanation == "" {
		c.Theory = Theory{
			Explanation: "This lesson focuses on practical vocabulary and usage. Review the words carefully.",
			Examples:    []string{"Try to build your own sentences."},
		}
	}
	for len(c.Practice) < 3 {
		w := c.Words[len(c.Practice)%len(c.Words)]
		options := []string{w.Translation}
		for _, f := range fallbackWords {
			if len(options) == 4 {
				break
			}
			if f.Translation != w.Translation {
				options = append(options, f.Translation)
			}
		}
		c.Practice = append(c.Practice, Practice{
			Question: fmt.Sprintf("What is the correct translation of %q?", w.Word),
			Options:  options,
			Correct:  w.Translation,
		})
	}
}

var levelDescriptions = map[domain.Level]string{
	domain.LevelBeginner:          "Start your journey",
	domain.LevelElementary:        "Basics of daily life",
	domain.LevelPreIntermediate:   "Travel & Communication",
	domain.LevelIntermediate:      "Complex conversations",
	domain.LevelUpperIntermediate: "Fluent expression",
	domain.LevelAdvanced:          "Mastery of English",
}

var fallbackWords = []Word{
	{"House", "Дом", "This is my house."},
	{"Window", "Окно", "Look out the window."},
	{"Table", "Стол", "The book is on the table."},
	{"Chair", "Стул", "Sit on the chair."},
	{"Bed", "Кровать", "Go to bed."},
	{"Book", "Книга", "I read a book."},
	{"Pen", "Ручка", "Write with a pen."},
	{"Paper", "Бумага", "Sheet of paper."},
	{"Phone", "Телефон", "Call me on the phone."},
	{"Car", "Машина", "Drive a car."},
	{"Bus", "Автобус", "Wait for the bus."},
	{"Sun", "Солнце", "The sun is hot."},
	{"Moon", "Луна", "The moon is white."},
	{"Star", "Звезда", "Look at the stars."},
	{"Sky", "Небо", "The sky is big."},
	{"Ground", "Земля", "Walk on the ground."},
	{"Tree", "Дерево", "The tree is green."},
	{"Flower", "Цветок", "The flower is beautiful."},
	{"Bird", "Птица", "The bird is singing."},
}

var starterCurriculum = map[domain.Level][]seedLesson{
	domain.LevelBeginner: {
		{
			Title: "The Alphabet & Sounds",
			Type:  domain.LessonVocabulary,
			Content: Content{
				Words: []Word{
					{"Apple", "Яблоко", "A is for Apple."},
					{"Ball", "Мяч", "The ball is red."},
					{"Cat", "Кот", "My cat is sleeping."},
					{"Dog", "Собака", "The dog says woof."},
					{"Elephant", "Слон", "Elephants are big."},
					{"Fish", "Рыба", "Fish live in water."},
					{"Goat", "Коза", "The goat is on the hill."},
					{"Hat", "Шляпа", "I wear a warm hat."},
					{"Ice Cream", "Мороженое", "I love chocolate ice cream."},
					{"Jam", "Джем", "Sweet jam on bread."},
				},
				Theory: Theory{
					Explanation: "The English alphabet has 26 letters. Sounds are vowels (a, e, i, o, u) and consonants.",
					Examples:    []string{`"A" is a vowel.`, `"B" is a consonant.`},
				},
				Practice: []Practice{
					{`Translation of "Apple"?`, []string{"Яблоко", "Мяч", "Кот", "Рыба"}, "Яблоко"},
					{"Which one is an animal?", []string{"Hat", "Dog", "Jam", "Ball"}, "Dog"},
					{`Complete: "The ___ live in water"`, []string{"Fish", "Elephant", "Cat", "Hat"}, "Fish"},
					{`What says "Woof"?`, []string{"Dog", "Cat", "Fish", "Goat"}, "Dog"},
				},
			},
		},
		{
			Title: "Numbers 1-10",
			Type:  domain.LessonVocabulary,
			Content: Content{
				Words: []Word{
					{"One", "Один", "One sun in the sky."},
					{"Two", "Два", "Two hands and two feet."},
					{"Three", "Три", "Three little pigs."},
					{"Four", "Четыре", "A table has four legs."},
					{"Five", "Пять", "Five fingers on a hand."},
					{"Six", "Шесть", "Six eggs in a box."},
					{"Seven", "Семь", "Seven days in a week."},
					{"Eight", "Восемь", "Octopus has eight legs."},
					{"Nine", "Девять", "Nine lives of a cat."},
					{"Ten", "Десять", "Ten toes on my feet."},
				},
				Theory: Theory{
					Explanation: "Cardinal numbers are used for counting quantity.",
					Examples:    []string{"Count: 1, 2, 3...", "We have 10 fingers."},
				},
				Practice: []Practice{
					{"How many days in a week?", []string{"Seven", "Five", "Ten", "Six"}, "Seven"},
					{"What comes after eight?", []string{"Nine", "Seven", "Ten", "Six"}, "Nine"},
					{"A table has ___ legs.", []string{"Four", "Two", "Eight", "One"}, "Four"},
				},
			},
		},
		{
			Title: "Colors in English",
			Type:  domain.LessonVocabulary,
			Content: Content{
				Words: []Word{
					{"Red", "Красный", "A red apple."},
					{"Blue", "Синий", "The sky is blue."},
					{"Green", "Зеленый", "The grass is green."},
					{"Yellow", "Желтый", "The sun is yellow."},
					{"Orange", "Оранжевый", "An orange orange."},
					{"Purple", "Фиолетовый", "Purple flowers."},
					{"Black", "Черный", "Night is black."},
					{"White", "Белый", "Snow is white."},
					{"Pink", "Розовый", "Pink flamingos."},
					{"Brown", "Коричневый", "Brown bears."},
				},
				Theory: Theory{
					Explanation: "Colors describe the appearance of objects.",
					Examples:    []string{"The sky is blue.", "Leaves are green."},
				},
				Practice: []Practice{
					{"What color is the sky?", []string{"Blue", "Red", "Black", "Green"}, "Blue"},
					{"Grass is usually...", []string{"Green", "Blue", "Orange", "Purple"}, "Green"},
					{"Snow is...", []string{"White", "Black", "Blue", "Gray"}, "White"},
				},
			},
		},
		{
			Title: "Family Members",
			Type:  domain.LessonVocabulary,
			Content: Content{
				Words: []Word{
					{"Mother", "Мать", "I love my mother."},
					{"Father", "Отец", "My father is tall."},
					{"Sister", "Сестра", "My sister is funny."},
					{"Brother", "Брат", "I have one brother."},
					{"Grandmother", "Бабушка", "Grandmother bakes cookies."},
					{"Grandfather", "Дедушка", "Grandfather tells stories."},
					{"Aunt", "Тетя", "My aunt lives in London."},
					{"Uncle", "Дядя", "My uncle is a pilot."},
					{"Cousin", "Кузен", "My cousin is my best friend."},
					{"Baby", "Малыш", "The baby is sleeping."},
				},
				Theory: Theory{
					Explanation: "Family relates to people connected by blood or marriage.",
					Examples:    []string{"My mother's sister is my aunt.", "My father's father is my grandfather."},
				},
				Practice: []Practice{
					{"Father of your father?", []string{"Grandfather", "Uncle", "Brother", "Cousin"}, "Grandfather"},
					{"Sister of your mother?", []string{"Aunt", "Grandmother", "Sister", "Baby"}, "Aunt"},
					{"Male sibling?", []string{"Brother", "Sister", "Father", "Uncle"}, "Brother"},
				},
			},
		},
		{
			Title: "Body Parts",
			Type:  domain.LessonVocabulary,
			Content: Content{
				Words: []Word{
					{"Head", "Голова", "I wear a hat on my head."},
					{"Eye", "Глаз", "I see with my eyes."},
					{"Nose", "Нос", "I smell with my nose."},
					{"Mouth", "Рот", "I eat with my mouth."},
					{"Ear", "Ухо", "I hear with my ears."},
					{"Hand", "Рука (кисть)", "Wave your hand."},
					{"Arm", "Рука (вся)", "Strong arms."},
					{"Leg", "Нога", "I walk with my legs."},
					{"Foot", "Ступня", "Left foot, right foot."},
					{"Finger", "Палец", "Ten fingers."},
				},
				Theory: Theory{
					Explanation: "Human body parts and their functions.",
					Examples:    []string{"Use eyes to see.", "Use legs to walk."},
				},
				Practice: []Practice{
					{"What do you see with?", []string{"Eyes", "Ears", "Nose", "Feet"}, "Eyes"},
					{"What do you walk with?", []string{"Legs", "Arms", "Head", "Nose"}, "Legs"},
					{"What do you smell with?", []string{"Nose", "Mouth", "Arm", "Leg"}, "Nose"},
				},
			},
		},
	},
	domain.LevelElementary: {
		{
			Title: "Daily Routine",
			Type:  domain.LessonVocabulary,
			Content: Content{
				Words: []Word{
					{"Wake up", "Просыпаться", "I wake up at 7 AM."},
					{"Brush teeth", "Чистить зубы", "I brush my teeth twice a day."},
					{"Take a shower", "Принимать душ", "I take a shower in the morning."},
					{"Get dressed", "Одеваться", "I get dressed for work."},
					{"Have breakfast", "Завтракать", "I have breakfast with coffee."},
					{"Go to work", "Идти на работу", "I go to work by bus."},
					{"Work", "Работать", "I work at an office."},
					{"Have lunch", "Обедать", "I have lunch at 1 PM."},
					{"Cook dinner", "Готовить ужин", "I cook dinner for my family."},
					{"Go to sleep", "Ложиться спать", "I go to sleep at 11 PM."},
				},
				Theory: Theory{
					Explanation: "Daily routine uses Present Simple for habitual actions.",
					Examples:    []string{"I brush my teeth every day.", "She wakes up early."},
				},
				Practice: []Practice{
					{"What do you do first?", []string{"Wake up", "Work", "Lunch", "Shower"}, "Wake up"},
					{"What do you do at night?", []string{"Go to sleep", "Wake up", "Go to work", "Lunch"}, "Go to sleep"},
					{"I ___ to work by bus.", []string{"go", "eat", "sleep", "read"}, "go"},
				},
			},
		},
		{
			Title: "In the City",
			Type:  domain.LessonVocabulary,
			Content: Content{
				Words: []Word{
					{"Street", "Улица", "Main street is busy."},
					{"Building", "Здание", "Tall building."},
					{"Park", "Парк", "Walk in the park."},
					{"Shop", "Магазин", "Buy food in the shop."},
					{"Hospital", "Больница", "Doctors work in hospital."},
					{"School", "Школа", "Students go to school."},
					{"Library", "Библиотека", "Read books in library."},
					{"Bank", "Банк", "Keep money in a bank."},
					{"Restaurant", "Ресторан", "Eat dinner at a restaurant."},
					{"Airport", "Аэропорт", "Fly from the airport."},
				},
				Theory: Theory{
					Explanation: "Public places and infrastructure in a city.",
					Examples:    []string{"There is a big park nearby.", "The hospital is on the left."},
				},
				Practice: []Practice{
					{"Where do you read books?", []string{"Library", "Bank", "Airport", "Shop"}, "Library"},
					{"Where do doctors work?", []string{"Hospital", "Shop", "Library", "Bank"}, "Hospital"},
					{"Where do students go?", []string{"School", "Shop", "Airport", "Hospital"}, "School"},
				},
			},
		},
		{
			Title: "Food and Drinks",
			Type:  domain.LessonVocabulary,
			Content: Content{
				Words: []Word{
					{"Bread", "Хлеб", "Fresh white bread."},
					{"Milk", "Молоко", "Drink cold milk."},
					{"Water", "Вода", "I am thirsty for water."},
					{"Meat", "Мясо", "Grilled meat."},
					{"Fruit", "Фрукты", "Eat fresh fruit."},
					{"Vegetable", "Овощи", "Green vegetables."},
					{"Sugar", "Сахар", "Sweet sugar."},
					{"Tea", "Чай", "Hot cup of tea."},
					{"Coffee", "Кофе", "Morning coffee."},
					{"Juice", "Сок", "Orange juice."},
				},
				Theory: Theory{
					Explanation: "Countable and uncountable nouns for food.",
					Examples:    []string{"An apple (countable).", "Some milk (uncountable)."},
				},
				Practice: []Practice{
					{"White liquid from cows?", []string{"Milk", "Water", "Juice", "Coffee"}, "Milk"},
					{"Drink for waking up?", []string{"Coffee", "Milk", "Water", "Tea"}, "Coffee"},
					{"Sugar tastes...", []string{"Sweet", "Sour", "Bitter", "Salty"}, "Sweet"},
				},
			},
		},
	},
}
