package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

// Simulator drives a full game through the HTTP API for local development:
// registers players, creates a game, fills it with questions, starts it,
// and optionally plays every question to the end.

const defaultAPIURL = "http://localhost:8080"

type simPlayer struct {
	user  *User
	token string
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	client := NewAPIClient(apiURL)

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "full":
		err = runFull(client, args)
	case "populate":
		err = runPopulate(client, args)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func printUsage() {
	fmt.Println("Game Simulator - drives a game through the API for development")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  simulator full [-players N] [-questions N] [-play]")
	fmt.Println("      Register players, create a game, add questions, start it.")
	fmt.Println("      With -play, record every choice and guess and print results.")
	fmt.Println()
	fmt.Println("  simulator populate -code CODE [-players N]")
	fmt.Println("      Register players and join them to an existing game by short code.")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  API_URL   Backend base URL (default " + defaultAPIURL + ")")
}

func runFull(client *APIClient, args []string) error {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	playerCount := fs.Int("players", 3, "number of players")
	questionCount := fs.Int("questions", 2, "number of questions")
	play := fs.Bool("play", false, "play every question to the end")
	fs.Parse(args)

	if *playerCount < 2 {
		return fmt.Errorf("a game needs at least 2 players")
	}
	if *questionCount < 2 {
		return fmt.Errorf("a game needs at least 2 questions")
	}

	players, err := registerPlayers(client, *playerCount)
	if err != nil {
		return err
	}
	host := players[0]

	game, err := client.CreateGame(host.token, "Simulated Game")
	if err != nil {
		return err
	}
	log.Printf("Created game %s (code %s)", game.ID, game.ShortCode)

	for _, p := range players[1:] {
		if _, err := client.JoinGame(p.token, game.ShortCode); err != nil {
			return fmt.Errorf("player %s could not join: %w", p.user.DisplayName, err)
		}
		log.Printf("Player %s joined", p.user.DisplayName)
	}

	for i := 0; i < *questionCount; i++ {
		author := players[i%len(players)]
		multiple := i%2 == 1
		question, err := client.AddQuestion(author.token, game.ID,
			fmt.Sprintf("Simulated question %d", i+1), multiple,
			map[string]string{
				"A": "First option",
				"B": "Second option",
				"C": "Third option",
			})
		if err != nil {
			return fmt.Errorf("could not add question %d: %w", i+1, err)
		}
		log.Printf("Added question %d (%s, multipleAnswers=%v)", i+1, question.ID, multiple)
	}

	game, err = client.StartGame(host.token, game.ID)
	if err != nil {
		return err
	}
	log.Printf("Game started, current question %s", game.CurrentQuestionID)

	if !*play {
		fmt.Printf("\nGame ready. Join code: %s\n", game.ShortCode)
		return nil
	}

	return playThrough(client, game, players)
}

func runPopulate(client *APIClient, args []string) error {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	code := fs.String("code", "", "short code of the game to join")
	playerCount := fs.Int("players", 2, "number of players to add")
	fs.Parse(args)

	if *code == "" {
		return fmt.Errorf("-code is required")
	}

	players, err := registerPlayers(client, *playerCount)
	if err != nil {
		return err
	}

	for _, p := range players {
		game, err := client.JoinGame(p.token, *code)
		if err != nil {
			return fmt.Errorf("player %s could not join: %w", p.user.DisplayName, err)
		}
		log.Printf("Player %s joined %s (%d players)", p.user.DisplayName, game.Name, len(game.Players))
	}

	return nil
}

func registerPlayers(client *APIClient, count int) ([]simPlayer, error) {
	players := make([]simPlayer, 0, count)
	for i := 0; i < count; i++ {
		user, token, err := client.RegisterUser(fmt.Sprintf("sim_player%d", i+1))
		if err != nil {
			return nil, err
		}
		log.Printf("Registered %s", user.DisplayName)
		players = append(players, simPlayer{user: user, token: token})
	}
	return players, nil
}

// playThrough records a choice for every player and a guess for every
// ordered pair on each question until the game ends, then prints results.
func playThrough(client *APIClient, game *Game, players []simPlayer) error {
	byID := make(map[string]simPlayer, len(players))
	for _, p := range players {
		byID[p.user.ID] = p
	}

	questionIDs := make([]string, 0, len(game.Questions))

	for game.Status == "started" {
		questionID := game.CurrentQuestionID
		questionIDs = append(questionIDs, questionID)
		question := findQuestion(game, questionID)
		if question == nil {
			return fmt.Errorf("current question %s not present in game payload", questionID)
		}
		log.Printf("Playing question %d: %s", question.Position+1, question.Text)

		// Each player picks a variant by their seat so results vary.
		for i, p := range players {
			variant := question.Variants[i%len(question.Variants)]
			if _, err := client.RecordChoice(p.token, game.ID, []string{variant.ID}); err != nil {
				return fmt.Errorf("choice by %s failed: %w", p.user.DisplayName, err)
			}
		}

		for _, guesser := range players {
			for j, subject := range players {
				if guesser.user.ID == subject.user.ID {
					continue
				}
				variant := question.Variants[j%len(question.Variants)]
				updated, err := client.RecordGuess(guesser.token, game.ID, subject.user.ID, []string{variant.ID})
				if err != nil {
					return fmt.Errorf("guess by %s about %s failed: %w",
						guesser.user.DisplayName, subject.user.DisplayName, err)
				}
				game = updated
			}
		}
	}

	log.Printf("Game ended after %d questions", len(questionIDs))

	host := players[0]
	for _, questionID := range questionIDs {
		results, err := client.GetResults(host.token, game.ID, questionID)
		if err != nil {
			return err
		}
		question := findQuestion(game, questionID)
		fmt.Printf("\nResults for %q:\n", question.Text)
		for _, result := range results {
			name := result.UserID
			if p, ok := byID[result.UserID]; ok {
				name = p.user.DisplayName
			}
			fmt.Printf("  %-24s %d\n", name, result.TotalScore)
		}
	}

	return nil
}

func findQuestion(game *Game, questionID string) *Question {
	for i := range game.Questions {
		if game.Questions[i].ID == questionID {
			return &game.Questions[i]
		}
	}
	return nil
}
