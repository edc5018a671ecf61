package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home(rooms []RoomSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>TimePin</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">TimePin</span>
        <h1>When and where was this taken?</h1>
        <p>Host a room in seconds or jump into one with a code from a friend.</p>
      </header>

      <section class="panel">
        <div>
          <h2>Create a room</h2>
          <p>Start a new lobby and share the room code with your players.</p>
        </div>
        <button id="createRoom" class="primary">Create room</button>
        <div id="createResult" class="result"></div>
      </section>

      <section class="panel">
        <div>
          <h2>Join a room</h2>
          <p>Enter the room code from the host and your display name.</p>
        </div>
        <form id="joinForm" class="join-form">
          <input name="code" placeholder="Room code" autocomplete="off" required/>
          <input name="name" placeholder="Display name" autocomplete="name" required/>
          <button type="submit" class="secondary">Join room</button>
        </form>
        <div id="joinResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Open rooms</h2>
        <ul id="roomList" class="room-list">`)
		for _, room := range rooms {
			_, _ = io.WriteString(w, `<li class="room-item"><span class="code">`)
			_, _ = io.WriteString(w, templ.EscapeString(room.Code))
			_, _ = io.WriteString(w, `</span> <span class="status">`)
			_, _ = io.WriteString(w, templ.EscapeString(room.Status))
			_, _ = io.WriteString(w, `</span> <span class="count">`)
			_, _ = io.WriteString(w, itoa(room.Participants))
			_, _ = io.WriteString(w, ` playing</span></li>`)
		}
		_, _ = io.WriteString(w, `</ul>
      </section>
    </main>

    <script>
      const createBtn = document.getElementById("createRoom");
      const createResult = document.getElementById("createResult");
      const joinForm = document.getElementById("joinForm");
      const joinResult = document.getElementById("joinResult");
      const roomList = document.getElementById("roomList");

      createBtn.addEventListener("click", async () => {
        createResult.textContent = "Creating room...";
        const res = await fetch("/api/rooms", { method: "POST" });
        const data = await res.json();
        if (!res.ok) {
          createResult.textContent = data.error || "Failed to create room.";
          return;
        }
        createResult.textContent = "Room created. Code: " + data.code;
        window.location = "/join/" + encodeURIComponent(data.code);
      });

      joinForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        joinResult.textContent = "Joining room...";
        const code = joinForm.elements.code.value.trim();
        const name = joinForm.elements.name.value.trim();
        const res = await fetch("/api/rooms/" + encodeURIComponent(code) + "/join", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ name })
        });
        const data = await res.json();
        if (!res.ok) {
          joinResult.textContent = data.error || "Failed to join room.";
          return;
        }
        sessionStorage.setItem("timepin:" + data.room_id, String(data.participant_id));
        window.location = "/rooms/" + encodeURIComponent(data.room_id);
      });

      const wsProto = window.location.protocol === "https:" ? "wss" : "ws";
      const homeWS = new WebSocket(wsProto + "://" + window.location.host + "/ws/home");
      homeWS.addEventListener("message", (event) => {
        const data = JSON.parse(event.data);
        if (!data.rooms) return;
        roomList.innerHTML = "";
        for (const room of data.rooms) {
          const item = document.createElement("li");
          item.className = "room-item";
          item.textContent = room.code + " " + room.status + " " + room.participants + " playing";
          roomList.appendChild(item);
        }
      });
    </script>
  </body>
</html>
`)
		return nil
	})
}
